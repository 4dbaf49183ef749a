package models

import (
	"fmt"
	"time"
)

// ValidationError indicates malformed input that survived the HTTP layer's checks
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates a missing resource, or one not owned by the caller
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// CapacityError indicates insufficient seats or already-taken seat numbers.
// TakenSeats is populated when the caller requested explicit seats.
type CapacityError struct {
	Requested  int
	Available  int
	TakenSeats []int
}

func (e *CapacityError) Error() string {
	if len(e.TakenSeats) > 0 {
		return fmt.Sprintf("seats %v are already booked", e.TakenSeats)
	}
	return fmt.Sprintf("insufficient seats: requested %d, available %d", e.Requested, e.Available)
}

// WindowViolationError indicates a cancellation attempted within 24h of departure
type WindowViolationError struct {
	DepartureAt time.Time
}

func (e *WindowViolationError) Error() string {
	return fmt.Sprintf("bookings can only be cancelled at least 24 hours before departure (departs %s)",
		e.DepartureAt.Format(time.RFC3339))
}

// OverCancelError indicates a request to cancel more seats than are booked
type OverCancelError struct {
	Requested int
	Booked    int
}

func (e *OverCancelError) Error() string {
	return fmt.Sprintf("cannot cancel %d seats, only %d booked", e.Requested, e.Booked)
}

// ConflictError indicates a concurrent-write serialization failure.
// The operation made no changes and may be retried by the caller.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return "booking conflicted with a concurrent request, please retry"
	}
	return e.Message
}
