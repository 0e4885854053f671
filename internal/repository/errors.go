// Package repository defines error values shared across the data access
// layer.  Handlers use errors.Is/errors.As against these to translate data
// failures into the HTTP error taxonomy.  Note that ownership failures on
// activity mutation are deliberately NOT distinguishable from missing rows:
// the owner-filtered UPDATE/DELETE statements report both as
// ErrActivityNotFound so non-owners cannot discover whether another user's
// activity exists.
package repository

import (
	"errors"
	"fmt"
)

// ErrActivityNotFound is returned when an activity id does not exist, or
// when a mutation was attempted by someone other than the owner.
var ErrActivityNotFound = errors.New("activity not found")

// ErrActivityExpired is returned by Join when the activity's scheduled time
// has already passed.
var ErrActivityExpired = errors.New("activity already occurred")

// ErrOwnActivity is returned by Join when the organizer tries to enroll in
// their own activity.
var ErrOwnActivity = errors.New("cannot join own activity")

// ErrAlreadyEnrolled is returned by Join when an enrollment for the
// (user, activity) pair already exists.
var ErrAlreadyEnrolled = errors.New("already enrolled")

// ErrActivityFull is returned by Join when no seats remain.
var ErrActivityFull = errors.New("activity is full")

// ErrNotEnrolled is returned by Leave when no enrollment exists to remove.
var ErrNotEnrolled = errors.New("not enrolled")

// ErrEmailExists is returned on registration with a duplicate email.
var ErrEmailExists = errors.New("email already exists")

// CapacityBelowEnrolledError rejects a capacity update that would orphan
// already-confirmed participants.  Enrolled carries the current enrollment
// count so the caller can tell the organizer the minimum allowed value.
type CapacityBelowEnrolledError struct {
	Enrolled int
}

func (e *CapacityBelowEnrolledError) Error() string {
	return fmt.Sprintf("capacity below current enrollment count (%d)", e.Enrolled)
}
