package handler

import (
	"net/http"

	"biochat/internal/app/store"
	"biochat/internal/pkg/auth/jwt"
	"biochat/internal/pkg/resp"
)

// ViewResponse tells the client which page to render.
type ViewResponse struct {
	View   store.View `json:"view"`
	Notice string     `json:"notice,omitempty"`
}

// HandleView resolves the page the caller may see for ?page=. Anonymous callers get
// the landing page and banned users only the restricted notice.
func HandleView(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userID string
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			userID = payload.ID
		}

		view := deps.Store.ViewFor(userID, store.ParseView(r.URL.Query().Get("page")))

		out := ViewResponse{View: view}
		if view == store.ViewRestricted {
			out.Notice = store.RestrictedNotice
		}

		resp.RespondSuccess(w, r, out)
	}
}
