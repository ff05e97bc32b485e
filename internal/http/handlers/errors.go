// Package handlers defines the HTTP-layer error codes used across all API
// endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them for
// programmatic error handling, supplementing the HTTP status and the
// human-readable message. Every error response carries exactly one of
// these codes in its `error` field.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeInvalidArgument  = "invalid_argument"
	ErrCodeCredentials      = "invalid_credentials"
	ErrCodeUnauthenticated  = "authentication_required"
	ErrCodeAlreadyBlocked   = "already_blocked"
	ErrCodeVersionConflict  = "version_conflict"
	ErrCodeNotFound         = "not_found"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"
)
