/*
Package errs provides custom error types and application-level error code constants.

This file maps error codes to their CustomError templates.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Chat and Feed Business Logic Errors
	ErrTopicInvalid:    {Code: ErrTopicInvalid, Message: "Unknown chat topic."},
	ErrNoActiveSession: {Code: ErrNoActiveSession, Message: "You are not in a chat."},
	ErrContentTooLong:  {Code: ErrContentTooLong, Message: "Content is too long (max %d characters)."},

	// 3xxx: Identity, Session, and Moderation Errors
	ErrPowChallengeRequired: {Code: ErrPowChallengeRequired, Message: "Verification required. Please try again."},
	ErrPowChallengeInvalid:  {Code: ErrPowChallengeInvalid, Message: "Verification failed. Please try again."},
	ErrSessionKicked:        {Code: ErrSessionKicked, Message: "You opened the chat somewhere else."},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Name and college are required."},
	ErrUserNotFound:         {Code: ErrUserNotFound, Message: "Account not found.", Status: http.StatusNotFound},

	ErrUnauthorized:        {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrForbidden:           {Code: ErrForbidden, Message: "You do not have access to this page.", Status: http.StatusForbidden},
	ErrAccountRestricted:   {Code: ErrAccountRestricted, Message: "Your account has been suspended by the administration due to violation of community guidelines.", Status: http.StatusForbidden},
	ErrCannotModerateAdmin: {Code: ErrCannotModerateAdmin, Message: "Admin accounts cannot be moderated.", Status: http.StatusForbidden},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
