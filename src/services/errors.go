package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrParsingFailed       = errors.New("failed to parse the uploaded file")
	ErrInvalidMapping      = errors.New("invalid column mapping")
	ErrNoUploadData        = errors.New("no uploaded payout data")
	ErrEntitlementRequired = errors.New("an active subscription is required")
)

// DetailedError carries the user-facing messages behind one of the sentinel errors.
type DetailedError struct {
	Err     error
	Details []string
}

func (e *DetailedError) Error() string {
	if len(e.Details) == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, strings.Join(e.Details, "; "))
}

func (e *DetailedError) Unwrap() error { return e.Err }

// ErrorDetails returns the messages attached to err, if any.
func ErrorDetails(err error) []string {
	var detailed *DetailedError
	if errors.As(err, &detailed) {
		return detailed.Details
	}
	return nil
}
