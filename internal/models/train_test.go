package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func routeFixture() []RouteStop {
	return []RouteStop{
		{StationID: "station-a", StationCode: "CMB", SequenceNumber: 1, DepartureTime: strPtr("06:30")},
		{StationID: "station-b", StationCode: "GLE", SequenceNumber: 2, DepartureTime: strPtr("08:45")},
		{StationID: "station-c", StationCode: "MTR", SequenceNumber: 3},
	}
}

func TestTrainFareFor(t *testing.T) {
	train := &Train{FarePerSeat: 125.50}

	t.Run("Multiple Seats", func(t *testing.T) {
		fare, err := train.FareFor(4)
		require.NoError(t, err)
		assert.Equal(t, 502.0, fare)
	})

	t.Run("Zero Seats", func(t *testing.T) {
		_, err := train.FareFor(0)
		assert.Error(t, err)
	})
}

func TestTrainSegmentFor(t *testing.T) {
	train := &Train{ID: "train-1", Route: routeFixture()}

	t.Run("Valid Segment", func(t *testing.T) {
		segment, err := train.SegmentFor("station-a", "station-c")
		require.NoError(t, err)
		assert.Equal(t, "station-a", segment.Origin.StationID)
		assert.Equal(t, "station-c", segment.Destination.StationID)
	})

	t.Run("Reversed Direction", func(t *testing.T) {
		_, err := train.SegmentFor("station-c", "station-a")
		require.Error(t, err)
		assert.IsType(t, &ValidationError{}, err)
	})

	t.Run("Origin Not On Route", func(t *testing.T) {
		_, err := train.SegmentFor("station-x", "station-b")
		require.Error(t, err)
		assert.IsType(t, &NotFoundError{}, err)
	})

	t.Run("Destination Not On Route", func(t *testing.T) {
		_, err := train.SegmentFor("station-a", "station-x")
		require.Error(t, err)
		assert.IsType(t, &NotFoundError{}, err)
	})
}

func TestRouteStopDepartureAt(t *testing.T) {
	travelDate := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	t.Run("Clock Applied To Travel Date", func(t *testing.T) {
		stop := RouteStop{DepartureTime: strPtr("06:30")}
		departure := stop.DepartureAt(travelDate)
		assert.Equal(t, time.Date(2026, 10, 15, 6, 30, 0, 0, time.UTC), departure)
	})

	t.Run("Missing Departure Time Defaults To Midnight", func(t *testing.T) {
		stop := RouteStop{}
		departure := stop.DepartureAt(travelDate)
		assert.Equal(t, travelDate, departure)
	})
}
