package store

import (
	"errors"
	"fmt"

	"github.com/javiermolinar/hourly/internal/slot"
)

// ErrNoConsultant is returned when the store has no active consultant.
var ErrNoConsultant = errors.New("no consultant selected")

// FetchError is a failed read of the slot or appointment lists.
// The previously loaded lists are kept; the read can be retried.
type FetchError struct {
	Op  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ConflictError is a delete refused because the slot was booked in the meantime.
// The store reloads before returning it.
type ConflictError struct {
	ID  slot.ID
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s was booked meanwhile: %v", e.ID, e.Err)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}
