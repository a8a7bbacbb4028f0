package handler

import (
	"context"
	"net/http"

	"biochat/internal/app/user"
	"biochat/internal/pkg/auth/jwt"
	"biochat/internal/pkg/errs"
	"biochat/internal/pkg/resp"
)

type contextKey string

const currentUserKey contextKey = "current_user"

// RequireUser rejects anonymous requests and loads the caller's current record from the
// store, so role and ban state are never taken from the token.
func RequireUser(deps *AppDeps) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := jwt.GetPayloadFromContext(r)
			if payload == nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			u, ok := deps.Store.User(payload.ID)
			if !ok {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			ctx := context.WithValue(r.Context(), currentUserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BanGate blocks banned users. It must run after RequireUser and re-checks the ban flag
// through the store, so a ban issued mid-request still applies.
func BanGate(deps *AppDeps) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := currentUser(r)
			if !ok {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			if _, err := deps.Store.Authorize(u.ID); err != nil {
				resp.RespondError(w, r, storeError(err, 0))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin blocks non-admin users. It must run after RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := currentUser(r); !ok || !u.IsAdmin() {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) (user.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(user.User)
	return u, ok
}
