/*
Package handler provides the HTTP handlers and routing setup for the BioChat server.

This file defines the main Router, applying middleware like logging, CORS and IP-based
rate limiting, then the identity, role and ban gates, before delegating requests to the
API and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"biochat/internal/pkg/auth/jwt"
	"biochat/internal/pkg/logx"
	"biochat/internal/pkg/resp"
)

// Router sets up the main HTTP routing table for the application.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-PoW-Token"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "BioChat Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	identity := jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret)

	r.Route("/api", func(api chi.Router) {
		api.Use(identity)

		api.Get("/view", HandleView(deps))

		api.Route("/auth", func(auth chi.Router) {
			auth.With(deps.Limiters.Challenge.Middleware).Get("/challenge", HandleChallenge(deps))
			auth.Post("/verify", HandleVerify(deps))
			auth.With(deps.Limiters.Login.Middleware).Post("/login", HandleLogin(deps))
			auth.Post("/logout", HandleLogout(deps))
		})

		api.Group(func(authed chi.Router) {
			authed.Use(RequireUser(deps))

			authed.Get("/me", HandleMe())

			authed.Group(func(member chi.Router) {
				member.Use(BanGate(deps))

				member.Get("/posts", HandleListPosts(deps))
				member.Post("/posts", HandleCreatePost(deps))

				member.Route("/chat", func(ch chi.Router) {
					ch.Get("/topics", HandleListTopics())
					ch.Post("/session", HandleStartSession(deps))
					ch.Get("/session", HandleGetSession(deps))
					ch.Delete("/session", HandleLeaveSession(deps))
					ch.Post("/messages", HandleSendMessage(deps))
				})

				member.Route("/admin", func(admin chi.Router) {
					admin.Use(RequireAdmin)

					admin.Get("/users", HandleListUsers(deps))
					admin.Post("/users/{id}/ban", HandleToggleBan(deps))
				})
			})
		})
	})

	r.With(identity, RequireUser(deps), BanGate(deps)).
		Get("/ws", HandleWebSocket(wsUpgrader, deps.Limiters.Stream, deps))

	return r
}
