package models

import (
	"errors"
	"time"
)

// Train represents a train with its capacity and per-seat fare
type Train struct {
	ID          string    `json:"id" db:"id"`
	TrainNumber string    `json:"train_number" db:"train_number"`
	Name        string    `json:"name" db:"name"`
	TotalSeats  int       `json:"total_seats" db:"total_seats"`
	FarePerSeat float64   `json:"fare_per_seat" db:"fare_per_seat"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Route is populated on demand, ordered by sequence number
	Route []RouteStop `json:"route,omitempty" db:"-"`
}

// RouteStop represents one station on a train's ordered route
type RouteStop struct {
	ID             string  `json:"id" db:"id"`
	TrainID        string  `json:"train_id" db:"train_id"`
	StationID      string  `json:"station_id" db:"station_id"`
	StationCode    string  `json:"station_code" db:"station_code"`
	StationName    string  `json:"station_name" db:"station_name"`
	SequenceNumber int     `json:"sequence_number" db:"sequence_number"`
	ArrivalTime    *string `json:"arrival_time,omitempty" db:"arrival_time"`
	DepartureTime  *string `json:"departure_time,omitempty" db:"departure_time"`
}

// FareFor computes the total fare for seatCount seats on this train
func (t *Train) FareFor(seatCount int) (float64, error) {
	if seatCount <= 0 {
		return 0, &ValidationError{Message: "seat count must be at least 1"}
	}
	return t.FarePerSeat * float64(seatCount), nil
}

// Segment is an origin/destination pair along a train's route.
// Valid only when the origin precedes the destination in sequence order.
type Segment struct {
	Origin      RouteStop
	Destination RouteStop
}

// ErrSegmentOrder is returned when the destination does not follow the origin
var ErrSegmentOrder = errors.New("destination must come after origin on the route")

// SegmentFor resolves a station pair against the train's route
func (t *Train) SegmentFor(originStationID, destinationStationID string) (*Segment, error) {
	var origin, destination *RouteStop
	for i := range t.Route {
		stop := &t.Route[i]
		if stop.StationID == originStationID {
			origin = stop
		}
		if stop.StationID == destinationStationID {
			destination = stop
		}
	}

	if origin == nil {
		return nil, &NotFoundError{Resource: "origin station on route"}
	}
	if destination == nil {
		return nil, &NotFoundError{Resource: "destination station on route"}
	}
	if origin.SequenceNumber >= destination.SequenceNumber {
		return nil, &ValidationError{Message: ErrSegmentOrder.Error()}
	}

	return &Segment{Origin: *origin, Destination: *destination}, nil
}

// DepartureAt resolves the departure timestamp for a stop on a travel date.
// Stop departure times are "HH:MM" clock strings in the travel date's location.
func (s *RouteStop) DepartureAt(travelDate time.Time) time.Time {
	clock := "00:00"
	if s.DepartureTime != nil && *s.DepartureTime != "" {
		clock = *s.DepartureTime
	}

	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Date(travelDate.Year(), travelDate.Month(), travelDate.Day(), 0, 0, 0, 0, travelDate.Location())
	}

	return time.Date(
		travelDate.Year(), travelDate.Month(), travelDate.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, travelDate.Location(),
	)
}
