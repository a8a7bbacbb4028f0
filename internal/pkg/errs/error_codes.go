/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both inside the server
and in the JSON envelope returned to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Chat and Feed Business Logic Errors
const (
	// ErrTopicInvalid indicates that the requested chat topic is not one of the fixed topics.
	ErrTopicInvalid = 2101

	// ErrNoActiveSession indicates that the user has no active chat session.
	ErrNoActiveSession = 2103

	// ErrContentTooLong indicates that a post or message exceeded the maximum length limit.
	ErrContentTooLong = 2201
)

// 3xxx: Identity, Session, and Moderation Errors
const (
	// ErrPowChallengeRequired indicates the client must complete a Proof-of-Work challenge first.
	ErrPowChallengeRequired = 3001

	// ErrPowChallengeInvalid indicates that the PoW proof provided by the client is invalid.
	ErrPowChallengeInvalid = 3002

	// ErrSessionKicked indicates that the event stream was replaced by a newer connection.
	ErrSessionKicked = 3004

	// ErrInvalidCredentials indicates a login with a missing name or affiliation.
	ErrInvalidCredentials = 3101

	// ErrUserNotFound indicates that the referenced account does not exist.
	ErrUserNotFound = 3102

	// ErrUnauthorized indicates that the request carries no valid identity token.
	ErrUnauthorized = 3201

	// ErrForbidden indicates that the caller's role does not allow the operation.
	ErrForbidden = 3202

	// ErrAccountRestricted indicates that the caller's account is banned.
	ErrAccountRestricted = 3203

	// ErrCannotModerateAdmin indicates an attempt to ban or unban an admin account.
	ErrCannotModerateAdmin = 3204
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
