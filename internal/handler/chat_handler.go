package handler

import (
	"net/http"

	"biochat/internal/app/chat"
	"biochat/internal/pkg/errs"
	"biochat/internal/pkg/req"
	"biochat/internal/pkg/resp"
)

// TopicInfo describes one chat room topic.
type TopicInfo struct {
	Name        chat.Topic `json:"name"`
	Description string     `json:"description"`
}

// StartSessionRequest is the body of POST /api/chat/session.
type StartSessionRequest struct {
	Topic string `json:"topic"`
}

// SendMessageRequest is the body of POST /api/chat/messages.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessageResponse reports whether the message was appended.
type SendMessageResponse struct {
	Accepted bool `json:"accepted"`
}

// HandleListTopics returns the fixed chat topics.
func HandleListTopics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics := chat.Topics()
		out := make([]TopicInfo, 0, len(topics))
		for _, t := range topics {
			out = append(out, TopicInfo{Name: t, Description: t.Description()})
		}
		resp.RespondSuccess(w, r, out)
	}
}

// HandleStartSession matches the caller with a fresh anonymous peer.
func HandleStartSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := currentUser(r)

		var body StartSessionRequest
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		topic, ok := chat.ParseTopic(body.Topic)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrTopicInvalid))
			return
		}

		session, err := deps.Store.StartChatSession(u.ID, topic)
		if err != nil {
			resp.RespondError(w, r, chatError(err))
			return
		}

		resp.RespondSuccess(w, r, session)
	}
}

// HandleGetSession returns a snapshot of the caller's active session.
func HandleGetSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := currentUser(r)

		session, ok := deps.Store.ActiveSession(u.ID)
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrNoActiveSession))
			return
		}

		resp.RespondSuccess(w, r, session)
	}
}

// HandleLeaveSession ends the caller's session. Leaving twice is not an error.
func HandleLeaveSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := currentUser(r)

		left := deps.Store.LeaveChatSession(u.ID)

		resp.RespondSuccess(w, r, map[string]bool{"left": left})
	}
}

// HandleSendMessage appends a message to the caller's session and schedules the peer reply.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := currentUser(r)

		var body SendMessageRequest
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		accepted, err := deps.Store.SendMessage(r.Context(), u.ID, body.Text)
		if err != nil {
			resp.RespondError(w, r, chatError(err))
			return
		}

		resp.RespondSuccess(w, r, SendMessageResponse{Accepted: accepted})
	}
}
