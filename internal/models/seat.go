package models

import "time"

// SeatStatus represents the status of one seat on a train/date
type SeatStatus string

const (
	SeatStatusAvailable SeatStatus = "available"
	SeatStatusBooked    SeatStatus = "booked"
)

// SeatBookingStatus represents the status of a seat-booking row
type SeatBookingStatus string

const (
	SeatBookingConfirmed SeatBookingStatus = "confirmed"
	SeatBookingCancelled SeatBookingStatus = "cancelled"
)

// SeatBooking represents one seat held by a booking for a train and travel
// date. Uniqueness of (train, travel date, seat number) over confirmed rows
// is the oversell-prevention invariant.
type SeatBooking struct {
	ID          string            `json:"id" db:"id"`
	BookingID   string            `json:"booking_id" db:"booking_id"`
	TrainID     string            `json:"train_id" db:"train_id"`
	TravelDate  time.Time         `json:"travel_date" db:"travel_date"`
	SeatNumber  int               `json:"seat_number" db:"seat_number"`
	Status      SeatBookingStatus `json:"status" db:"status"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

// SeatAvailability is one entry of the per-seat availability map for a
// train and travel date
type SeatAvailability struct {
	SeatNumber int        `json:"seat_number"`
	Status     SeatStatus `json:"status"`
}
