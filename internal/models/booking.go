package models

import (
	"time"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// CancellationWindow is the minimum lead time before departure for a cancellation
const CancellationWindow = 24 * time.Hour

// Booking represents a confirmed or cancelled seat reservation on a train.
// While confirmed, TotalFare always equals NumberOfSeats * FarePerSeat and
// NumberOfSeats is at least 1; a booking whose last seat is cancelled
// transitions to cancelled rather than remaining confirmed with zero seats.
type Booking struct {
	ID                   string        `json:"id" db:"id"`
	BookingReference     string        `json:"booking_reference" db:"booking_reference"`
	UserID               string        `json:"user_id" db:"user_id"`
	TrainID              string        `json:"train_id" db:"train_id"`
	OriginStationID      string        `json:"origin_station_id" db:"origin_station_id"`
	DestinationStationID string        `json:"destination_station_id" db:"destination_station_id"`
	TravelDate           time.Time     `json:"travel_date" db:"travel_date"`
	DepartureAt          time.Time     `json:"departure_at" db:"departure_at"`
	NumberOfSeats        int           `json:"number_of_seats" db:"number_of_seats"`
	FarePerSeat          float64       `json:"fare_per_seat" db:"fare_per_seat"`
	TotalFare            float64       `json:"total_fare" db:"total_fare"`
	Status               BookingStatus `json:"status" db:"status"`
	CancelledAt          *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt            time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" db:"updated_at"`

	// Seats is populated on detail reads, ordered by seat number
	Seats []SeatBooking `json:"seats,omitempty" db:"-"`
}

// BookRequest is a validated booking request handed down by the HTTP layer.
// SeatNumbers selects explicit seats; when empty, NumberOfSeats lowest
// available seats are assigned.
type BookRequest struct {
	TrainID              string    `json:"train_id" binding:"required"`
	OriginStationID      string    `json:"origin_station_id" binding:"required"`
	DestinationStationID string    `json:"destination_station_id" binding:"required"`
	TravelDate           time.Time `json:"travel_date" binding:"required"`
	NumberOfSeats        int       `json:"number_of_seats"`
	SeatNumbers          []int     `json:"seat_numbers,omitempty"`
}

// SeatCount returns the number of seats the request asks for
func (r *BookRequest) SeatCount() int {
	if len(r.SeatNumbers) > 0 {
		return len(r.SeatNumbers)
	}
	return r.NumberOfSeats
}

// Validate checks the request invariants the booking core relies on
func (r *BookRequest) Validate() error {
	if r.SeatCount() <= 0 {
		return &ValidationError{Message: "at least one seat must be requested"}
	}
	if r.OriginStationID == r.DestinationStationID {
		return &ValidationError{Message: "origin and destination must differ"}
	}
	seen := make(map[int]bool, len(r.SeatNumbers))
	for _, n := range r.SeatNumbers {
		if n <= 0 {
			return &ValidationError{Message: "seat numbers must be positive"}
		}
		if seen[n] {
			return &ValidationError{Message: "duplicate seat numbers in request"}
		}
		seen[n] = true
	}
	return nil
}

// BookingReceipt is returned to the caller on successful admission
type BookingReceipt struct {
	BookingID        string    `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	TrainID          string    `json:"train_id"`
	TravelDate       time.Time `json:"travel_date"`
	SeatNumbers      []int     `json:"seat_numbers"`
	NumberOfSeats    int       `json:"number_of_seats"`
	FarePerSeat      float64   `json:"fare_per_seat"`
	TotalFare        float64   `json:"total_fare"`
}

// CancelRequest asks to release seats from a booking (default one seat)
type CancelRequest struct {
	SeatsToCancel int `json:"seats_to_cancel"`
}

// CancelReceipt reports the outcome of a cancellation.
// RefundAmount is advisory; no payment transaction is executed.
type CancelReceipt struct {
	BookingID      string        `json:"booking_id"`
	SeatsCancelled int           `json:"seats_cancelled"`
	SeatsRemaining int           `json:"seats_remaining"`
	TotalFare      float64       `json:"total_fare"`
	RefundAmount   float64       `json:"refund_amount"`
	Status         BookingStatus `json:"status"`
}

// CanCancel evaluates the cancellation guards against the given clock.
// A non-positive window falls back to the default CancellationWindow.
func (b *Booking) CanCancel(seatsToCancel int, now time.Time, window time.Duration) error {
	if window <= 0 {
		window = CancellationWindow
	}
	if b.Status != BookingStatusConfirmed {
		return &NotFoundError{Resource: "booking"}
	}
	if b.DepartureAt.Sub(now) < window {
		return &WindowViolationError{DepartureAt: b.DepartureAt}
	}
	if seatsToCancel <= 0 {
		return &ValidationError{Message: "seats to cancel must be at least 1"}
	}
	if seatsToCancel > b.NumberOfSeats {
		return &OverCancelError{Requested: seatsToCancel, Booked: b.NumberOfSeats}
	}
	return nil
}

// ApplyCancellation mutates the in-memory booking after the guards pass
func (b *Booking) ApplyCancellation(seatsToCancel int, now time.Time) {
	b.NumberOfSeats -= seatsToCancel
	b.TotalFare = float64(b.NumberOfSeats) * b.FarePerSeat
	if b.NumberOfSeats == 0 {
		b.Status = BookingStatusCancelled
		b.CancelledAt = &now
	}
	b.UpdatedAt = now
}
