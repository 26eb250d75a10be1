// Package errors provides domain-specific sentinel errors for the
// report bot. Use errors.Is() to check these errors in your code.
package errors

import "errors"

var (
	// ErrIdentityNotFound indicates no staff record exists for a LINE user id.
	ErrIdentityNotFound = errors.New("staff identity not found")

	// ErrDecodeFailure indicates a postback payload could not be decoded
	// into the expected action fields.
	ErrDecodeFailure = errors.New("postback decode failure")

	// ErrDuplicateSubmission indicates a submission already exists for the
	// same staff, report and calendar day. The dispatcher treats it as a
	// benign no-op.
	ErrDuplicateSubmission = errors.New("duplicate submission")

	// ErrDeliveryFailure indicates a reply could not be delivered to the
	// LINE messaging API.
	ErrDeliveryFailure = errors.New("reply delivery failure")

	// ErrRepositoryUnavailable indicates the persistence layer failed.
	ErrRepositoryUnavailable = errors.New("repository unavailable")

	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")
)
