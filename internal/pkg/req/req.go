/*
Package req provides helpers for decoding HTTP request bodies.

Bodies are size-limited and strictly decoded so malformed input is rejected with a
specific error code before it reaches the store.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"biochat/internal/pkg/errs"
)

// MaxJSONBodyBytes caps the size of any JSON request body (64 KB).
const MaxJSONBodyBytes int64 = 64 << 10

// BindJSON decodes the JSON request body into dst.
// Unknown fields, trailing data and oversized bodies are rejected.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
