package handler

import (
	"context"
	"errors"

	"biochat/internal/app/chat"
	"biochat/internal/app/post"
	"biochat/internal/app/store"
	"biochat/internal/pkg/errs"
)

// storeError maps a store sentinel error to the client-facing error code.
// maxLen fills the ErrContentTooLong template.
func storeError(err error, maxLen int) *errs.CustomError {
	switch {
	case errors.Is(err, store.ErrInvalidCredentials):
		return errs.NewError(errs.ErrInvalidCredentials)
	case errors.Is(err, store.ErrUserNotFound):
		return errs.NewError(errs.ErrUserNotFound)
	case errors.Is(err, store.ErrBanned):
		return errs.NewError(errs.ErrAccountRestricted)
	case errors.Is(err, store.ErrNotAdmin):
		return errs.NewError(errs.ErrForbidden)
	case errors.Is(err, store.ErrProtectedUser):
		return errs.NewError(errs.ErrCannotModerateAdmin)
	case errors.Is(err, store.ErrInvalidTopic):
		return errs.NewError(errs.ErrTopicInvalid)
	case errors.Is(err, store.ErrNoActiveSession):
		return errs.NewError(errs.ErrNoActiveSession)
	case errors.Is(err, store.ErrContentTooLong):
		return errs.NewError(errs.ErrContentTooLong, maxLen)
	default:
		return errs.NewError(errs.ErrUnknown, err)
	}
}

func postError(err error) *errs.CustomError {
	return storeError(err, post.MaxContentLength)
}

func chatError(err error) *errs.CustomError {
	return storeError(err, chat.MaxMessageLength)
}

// storeSender adapts the store to chat.MessageSender, translating its errors.
type storeSender struct {
	store *store.Store
}

func (s storeSender) SendMessage(ctx context.Context, userID, text string) (bool, error) {
	accepted, err := s.store.SendMessage(ctx, userID, text)
	if err != nil {
		return false, chatError(err)
	}
	return accepted, nil
}
