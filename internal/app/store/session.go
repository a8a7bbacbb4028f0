package store

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"biochat/internal/app/chat"
	"biochat/internal/pkg/randx"
)

// StartChatSession opens a session on topic with a random peer persona, replacing any
// session the user already had. Replies still in flight for the old session are discarded.
func (s *Store) StartChatSession(userID string, topic chat.Topic) (chat.Session, error) {
	if _, ok := chat.ParseTopic(string(topic)); !ok {
		return chat.Session{}, ErrInvalidTopic
	}

	s.mu.Lock()

	if err := s.authorizeLocked(userID); err != nil {
		s.mu.Unlock()
		return chat.Session{}, err
	}

	peer := randx.Pick(chat.PeerNames)
	session := chat.NewSession(randx.NewID(), topic, peer, s.opts.Now())

	if previous, ok := s.sessions[userID]; ok {
		s.logger.Info().
			Str("user_id", userID).
			Str("session_id", previous.session.ID).
			Msg("Replacing active chat session.")
	}
	s.sessions[userID] = &activeSession{session: session}

	snapshot := session.Clone()
	s.notify(userID, chat.TypeSessionStarted, snapshot.ID, chat.SessionPayload{Session: snapshot})
	s.mu.Unlock()

	s.logger.Info().
		Str("user_id", userID).
		Str("session_id", snapshot.ID).
		Str("topic", string(topic)).
		Str("peer", peer).
		Msg("Chat session started.")

	return snapshot, nil
}

// LeaveChatSession discards the user's active session. It reports whether one existed.
func (s *Store) LeaveChatSession(userID string) bool {
	s.mu.Lock()
	active, ok := s.sessions[userID]
	if ok {
		delete(s.sessions, userID)
		s.notify(userID, chat.TypeSessionEnded, active.session.ID, nil)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("session_id", active.session.ID).
		Msg("Chat session left.")

	return true
}

// ActiveSession returns a snapshot of the user's active session.
func (s *Store) ActiveSession(userID string) (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active, ok := s.sessions[userID]
	if !ok {
		return chat.Session{}, false
	}
	return active.session.Clone(), true
}

// SendMessage appends the user's message to the active session and schedules the peer
// reply after a random delay. Blank text is ignored and reported with accepted == false.
//
// The reply is bound to the store's lifetime, not to ctx, and is applied only if the
// originating session is still the user's active session when it resolves.
func (s *Store) SendMessage(ctx context.Context, userID, text string) (accepted bool, err error) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	if utf8.RuneCountInString(text) > chat.MaxMessageLength {
		return false, ErrContentTooLong
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}

	if err := s.authorizeLocked(userID); err != nil {
		s.mu.Unlock()
		return false, err
	}

	active, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return false, ErrNoActiveSession
	}

	sender, _ := s.findLocked(userID)
	msg := chat.Message{
		ID:         randx.NewID(),
		SenderID:   sender.ID,
		SenderName: sender.Username,
		Text:       text,
		Timestamp:  s.opts.Now(),
	}

	active.session.Messages = append(active.session.Messages, msg)
	active.pending++
	active.session.Composing = true

	req := replyRequest{
		userID:    userID,
		sessionID: active.session.ID,
		topic:     active.session.Topic,
		peerName:  active.session.PeerName,
		history:   active.session.Clone().Messages,
		delay:     randx.Duration(s.opts.ReplyDelayMin, s.opts.ReplyDelayMax),
	}

	s.notify(userID, chat.TypeMessage, req.sessionID, chat.MessagePayload{Message: msg})
	s.notify(userID, chat.TypeComposing, req.sessionID, chat.ComposingPayload{Composing: true})

	s.wg.Add(1)
	s.mu.Unlock()

	go s.deliverReply(req)

	return true, nil
}

// replyRequest is one outstanding peer reply, tagged with the session it was issued for.
type replyRequest struct {
	userID    string
	sessionID string
	topic     chat.Topic
	peerName  string
	history   []chat.Message
	delay     time.Duration
}

func (s *Store) deliverReply(req replyRequest) {
	defer s.wg.Done()

	timer := time.NewTimer(req.delay)
	defer timer.Stop()

	select {
	case <-s.ctx.Done():
		return
	case <-timer.C:
	}

	if !s.isCurrent(req.userID, req.sessionID) {
		s.discardReply(req)
		return
	}

	text := s.replies.Generate(s.ctx, req.topic, req.history, req.peerName)

	s.mu.Lock()
	active, ok := s.sessions[req.userID]
	if !ok || active.session.ID != req.sessionID {
		s.mu.Unlock()
		s.discardReply(req)
		return
	}

	msg := chat.Message{
		ID:         randx.NewID(),
		SenderID:   chat.PeerSenderID,
		SenderName: req.peerName,
		Text:       text,
		Timestamp:  s.opts.Now(),
	}

	active.session.Messages = append(active.session.Messages, msg)
	active.pending--
	active.session.Composing = active.pending > 0

	s.notify(req.userID, chat.TypeMessage, req.sessionID, chat.MessagePayload{Message: msg})
	s.notify(req.userID, chat.TypeComposing, req.sessionID, chat.ComposingPayload{Composing: active.session.Composing})
	s.mu.Unlock()
}

func (s *Store) isCurrent(userID, sessionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active, ok := s.sessions[userID]
	return ok && active.session.ID == sessionID
}

func (s *Store) discardReply(req replyRequest) {
	s.logger.Debug().
		Str("user_id", req.userID).
		Str("session_id", req.sessionID).
		Msg("Discarding peer reply for abandoned session.")
}

// authorizeLocked checks that userID exists and is not banned. s.mu must be held.
func (s *Store) authorizeLocked(userID string) error {
	u, ok := s.findLocked(userID)
	if !ok {
		return ErrUserNotFound
	}
	if u.IsBanned {
		return ErrBanned
	}
	return nil
}
