package handler

import (
	"net/http"

	"biochat/internal/app/post"
	"biochat/internal/pkg/req"
	"biochat/internal/pkg/resp"
)

// CreatePostRequest is the body of POST /api/posts.
type CreatePostRequest struct {
	Content string `json:"content"`
}

// CreatePostResponse reports whether a post was added. Blank content is not an error.
type CreatePostResponse struct {
	Created bool       `json:"created"`
	Post    *post.Post `json:"post,omitempty"`
}

// HandleListPosts returns the feed, newest first.
func HandleListPosts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Store.Posts())
	}
}

// HandleCreatePost publishes a post under the caller's persona.
func HandleCreatePost(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := currentUser(r)

		var body CreatePostRequest
		if bindErr := req.BindJSON(w, r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		p, created, err := deps.Store.CreatePost(u.ID, body.Content)
		if err != nil {
			resp.RespondError(w, r, postError(err))
			return
		}

		out := CreatePostResponse{Created: created}
		if created {
			out.Post = &p
		}

		resp.RespondSuccess(w, r, out)
	}
}
