/*
Package handler provides the HTTP handlers and routing setup for the BioChat server.

This file contains HandleWebSocket, which rate limits, upgrades the connection and hands
it to a chat.Client for the rest of its lifecycle.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"biochat/internal/app/chat"
	"biochat/internal/pkg/errs"
	"biochat/internal/pkg/limiter"
	"biochat/internal/pkg/logx"
	"biochat/internal/pkg/resp"
)

// HandleWebSocket opens the caller's event stream. It must run after RequireUser and
// BanGate. An active session is replayed as SESSION_STARTED so the client can resync.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.Allow(r) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", logx.AnonymizeIP(r.RemoteAddr))
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		u, _ := currentUser(r)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		var initial []chat.Event
		if session, ok := deps.Store.ActiveSession(u.ID); ok {
			evt, err := chat.NewEvent(chat.TypeSessionStarted, session.ID, chat.SessionPayload{Session: session})
			if err == nil {
				initial = append(initial, evt)
			}
		}

		logx.Info("WebSocket connection established", "client_id", u.ID)

		client := chat.NewClient(deps.Hub, conn, u.ID, storeSender{store: deps.Store})
		client.Serve(initial...)
	}
}
