// Package services – shared pagination rules.
//
// Pagination is offset-based (top/skip) over mutating datasets;
// concurrent inserts between two page requests may shift later pages.
// That is documented behavior, not a defect: each individual request is
// evaluated against a single database snapshot.
package services

// Pagination bounds applied uniformly to activity and blocklist listings.
const (
	// DefaultPageSize is used when the caller does not send top.
	DefaultPageSize = 25
	// MaxPageSize caps a single page; larger requests are rejected.
	MaxPageSize = 1000
)

// ValidatePage rejects out-of-range pagination parameters. top must be in
// (0, MaxPageSize] and skip non-negative.
func ValidatePage(top, skip int) error {
	if top <= 0 || top > MaxPageSize {
		return ErrInvalidArgument
	}
	if skip < 0 {
		return ErrInvalidArgument
	}
	return nil
}
