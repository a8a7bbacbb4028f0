/*
Package handler provides the HTTP handlers and routing setup for the BioChat server.

This file contains the identity endpoints: the optional Proof-of-Work handshake, login
(which mints a persona on first visit), logout and the current-user lookup.
*/
package handler

import (
	"net/http"

	"biochat/internal/app/store"
	"biochat/internal/app/user"
	"biochat/internal/pkg/auth/jwt"
	"biochat/internal/pkg/errs"
	"biochat/internal/pkg/logx"
	"biochat/internal/pkg/req"
	"biochat/internal/pkg/resp"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	RealName string `json:"realName"`
	College  string `json:"college"`
}

// VerifyRequest is the body of POST /api/auth/verify.
type VerifyRequest struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// IdentityResponse is returned by login and by GET /api/me.
type IdentityResponse struct {
	Token string     `json:"token,omitempty"`
	User  user.User  `json:"user"`
	View  store.View `json:"view"`
}

// HandleChallenge issues a Proof-of-Work nonce.
func HandleChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.PoW.NewChallenge())
	}
}

// HandleVerify exchanges a solved challenge for a single-use proof token.
func HandleVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body VerifyRequest
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		token, err := deps.PoW.Verify(body.Nonce, body.Counter)
		if err != nil {
			logx.Warn("PoW verification failed", "error", err.Error())
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{"token": token})
	}
}

// HandleLogin registers a new participant, or logs in the admin, and returns a signed
// identity token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.PoW.Consume(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		var body LoginRequest
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		u, err := deps.Store.LoginOrRegister(r.Context(), body.RealName, body.College)
		if err != nil {
			resp.RespondError(w, r, storeError(err, 0))
			return
		}

		token, err := jwt.GenerateToken(&jwt.Payload{ID: u.ID, Role: string(u.Role)}, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "Failed to sign identity token", "user_id", u.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, IdentityResponse{
			Token: token,
			User:  u.Public(),
			View:  store.ResolveView(&u, store.ViewHome),
		})
	}
}

// HandleLogout ends the caller's chat session and closes its event stream.
// Tokens are stateless, so anonymous calls simply succeed.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			deps.Store.LeaveChatSession(payload.ID)
			deps.Hub.Disconnect(payload.ID, errs.ErrUnauthorized)
			logx.Info("User signed out", "user_id", payload.ID)
		}

		resp.RespondSuccess(w, r, IdentityResponse{View: store.ViewLanding})
	}
}

// HandleMe returns the caller's public profile and the view it lands on.
// Banned users are allowed so the client can show the restricted notice.
func HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := currentUser(r)

		resp.RespondSuccess(w, r, IdentityResponse{
			User: u.Public(),
			View: store.ResolveView(&u, store.ViewHome),
		})
	}
}
