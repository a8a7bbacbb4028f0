package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"biochat/internal/pkg/errs"
	"biochat/internal/pkg/logx"
	"biochat/internal/pkg/resp"
)

// HandleListUsers returns every account, including private fields, for moderation.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Store.Users())
	}
}

// HandleToggleBan bans or unbans the user in the path. A newly banned user's event
// stream is closed immediately.
func HandleToggleBan(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, _ := currentUser(r)
		targetID := chi.URLParam(r, "id")

		updated, err := deps.Store.ModerateBan(actor.ID, targetID)
		if err != nil {
			resp.RespondError(w, r, storeError(err, 0))
			return
		}

		if updated.IsBanned {
			deps.Hub.Disconnect(updated.ID, errs.ErrAccountRestricted)
		}

		logx.Info("Moderation action applied", "actor_id", actor.ID, "target_id", updated.ID, "is_banned", updated.IsBanned)

		resp.RespondSuccess(w, r, updated)
	}
}
