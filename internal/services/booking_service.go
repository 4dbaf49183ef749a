package services

import (
	"time"

	"github.com/railsetu/railway-reservation-backend/internal/config"
	"github.com/railsetu/railway-reservation-backend/internal/database"
	"github.com/railsetu/railway-reservation-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// BookingService orchestrates availability checks and ledger transitions.
// Each public operation is one atomic unit of work: the ledger runs the
// guard evaluation and the writes it authorizes under the same transaction,
// so a stale availability read can never admit a booking.
type BookingService struct {
	trainRepo   *database.TrainRepository
	bookingRepo *database.BookingRepository
	config      config.BookingConfig
	logger      *logrus.Logger
	now         func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	trainRepo *database.TrainRepository,
	bookingRepo *database.BookingRepository,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		trainRepo:   trainRepo,
		bookingRepo: bookingRepo,
		config:      cfg,
		logger:      logger,
		now:         time.Now,
	}
}

// Book admits a booking request for a validated caller. Explicit seat
// numbers book exactly those seats; a bare count is assigned the lowest
// available seat numbers.
func (s *BookingService) Book(userID string, req *models.BookRequest) (*models.BookingReceipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.SeatCount() > s.config.MaxSeatsPerBooking {
		return nil, &models.ValidationError{
			Message: "requested seats exceed the per-booking limit",
		}
	}

	train, err := s.trainRepo.GetByID(req.TrainID)
	if err != nil {
		return nil, err
	}
	if !train.Active {
		return nil, &models.NotFoundError{Resource: "train"}
	}

	segment, err := train.SegmentFor(req.OriginStationID, req.DestinationStationID)
	if err != nil {
		return nil, err
	}

	departureAt := segment.Origin.DepartureAt(req.TravelDate)
	if departureAt.Before(s.now()) {
		return nil, &models.ValidationError{Message: "travel date is in the past"}
	}

	booking := &models.Booking{
		UserID:               userID,
		TrainID:              train.ID,
		OriginStationID:      segment.Origin.StationID,
		DestinationStationID: segment.Destination.StationID,
		TravelDate:           req.TravelDate,
		DepartureAt:          departureAt,
		NumberOfSeats:        req.NumberOfSeats,
		FarePerSeat:          train.FarePerSeat,
	}

	booked, err := s.bookingRepo.Admit(train, booking, req.SeatNumbers)
	if err != nil {
		return nil, err
	}

	seatNumbers := make([]int, len(booked.Seats))
	for i, seat := range booked.Seats {
		seatNumbers[i] = seat.SeatNumber
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":  booked.ID,
		"reference":   booked.BookingReference,
		"user_id":     userID,
		"train_id":    train.ID,
		"travel_date": req.TravelDate.Format("2006-01-02"),
		"seats":       seatNumbers,
		"total_fare":  booked.TotalFare,
	}).Info("Booking confirmed")

	return &models.BookingReceipt{
		BookingID:        booked.ID,
		BookingReference: booked.BookingReference,
		TrainID:          booked.TrainID,
		TravelDate:       booked.TravelDate,
		SeatNumbers:      seatNumbers,
		NumberOfSeats:    booked.NumberOfSeats,
		FarePerSeat:      booked.FarePerSeat,
		TotalFare:        booked.TotalFare,
	}, nil
}

// GetBooking retrieves one booking owned by the caller
func (s *BookingService) GetBooking(userID, bookingID string) (*models.Booking, error) {
	return s.bookingRepo.GetByID(bookingID, userID)
}

// ListBookings retrieves the caller's bookings, newest travel date first
func (s *BookingService) ListBookings(userID string) ([]models.Booking, error) {
	return s.bookingRepo.ListByUser(userID)
}

// Cancel releases seats from a booking owned by the caller. The refund
// amount in the receipt is advisory; no payment transaction is executed.
func (s *BookingService) Cancel(userID, bookingID string, seatsToCancel int) (*models.CancelReceipt, error) {
	if seatsToCancel == 0 {
		seatsToCancel = 1
	}

	receipt, err := s.bookingRepo.Cancel(bookingID, userID, seatsToCancel, s.now(), s.config.CancellationWindow)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":      bookingID,
		"user_id":         userID,
		"seats_cancelled": receipt.SeatsCancelled,
		"seats_remaining": receipt.SeatsRemaining,
		"refund_amount":   receipt.RefundAmount,
		"status":          receipt.Status,
	}).Info("Booking cancellation processed")

	return receipt, nil
}

// TrainManifest returns the confirmed bookings for a train and travel
// date. Callers are expected to be role-gated at the transport layer.
func (s *BookingService) TrainManifest(trainID string, travelDate time.Time) ([]models.Booking, error) {
	train, err := s.trainRepo.GetByID(trainID)
	if err != nil {
		return nil, err
	}
	return s.bookingRepo.ListByTrainDate(train.ID, travelDate)
}

// SeatAvailability returns the per-seat status map for a train and date,
// ordered by seat number
func (s *BookingService) SeatAvailability(trainID string, travelDate time.Time) ([]models.SeatAvailability, error) {
	train, err := s.trainRepo.GetByID(trainID)
	if err != nil {
		return nil, err
	}
	return s.bookingRepo.SeatAvailability(train, travelDate)
}

// AvailableSeats returns the remaining capacity for a train and date,
// derived from committed state
func (s *BookingService) AvailableSeats(trainID string, travelDate time.Time) (int, error) {
	train, err := s.trainRepo.GetByID(trainID)
	if err != nil {
		return 0, err
	}
	committed, err := s.bookingRepo.CountCommittedSeats(trainID, travelDate)
	if err != nil {
		return 0, err
	}
	return train.TotalSeats - committed, nil
}
