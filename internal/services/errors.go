// Package services defines the business logic for authentication, the
// unified activity log, the blocklist, and the configuration document.
// This file centralizes common service-level error values so that they
// can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into wire codes and HTTP statuses is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrInvalidCredentials is returned on login when the name is unknown
	// or the password does not match. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a session token is missing,
	// unknown, or expired.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidArgument is returned for malformed input: an empty or
	// unparseable domain, or out-of-range pagination parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyBlocked is returned when adding a domain that is already
	// on the blocklist.
	ErrAlreadyBlocked = errors.New("domain already blocked")

	// ErrVersionConflict is returned when a config update carries a stale
	// expected version.
	ErrVersionConflict = errors.New("config version conflict")

	// ErrNotFound indicates that a referenced record does not exist.
	ErrNotFound = errors.New("not found")
)
