package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railsetu/railway-reservation-backend/internal/config"
	"github.com/railsetu/railway-reservation-backend/internal/database"
	"github.com/railsetu/railway-reservation-backend/internal/models"
)

func newBookingServiceWithMock(t *testing.T) (*BookingService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := config.BookingConfig{
		MaxSeatsPerBooking: 6,
		CancellationWindow: 24 * time.Hour,
	}

	service := NewBookingService(
		database.NewTrainRepository(&database.PostgresDB{DB: sqlxDB}),
		database.NewBookingRepository(sqlxDB),
		cfg,
		logger,
	)
	service.now = func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	}
	return service, mock
}

func expectTrainRead(mock sqlmock.Sqlmock, totalSeats int, active bool) {
	now := time.Now()
	mock.ExpectQuery("FROM trains").
		WithArgs("train-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "train_number", "name", "total_seats", "fare_per_seat",
			"active", "created_at", "updated_at",
		}).AddRow("train-1", "1015", "Udarata Menike", totalSeats, 100.0, active, now, now))
	mock.ExpectQuery("FROM train_routes").
		WithArgs("train-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "train_id", "station_id", "station_code", "station_name",
			"sequence_number", "arrival_time", "departure_time",
		}).
			AddRow("route-1", "train-1", "station-a", "CMB", "Colombo Fort", 1, nil, "06:30").
			AddRow("route-2", "train-1", "station-b", "KDY", "Kandy", 2, "09:45", nil))
}

func TestBookingServiceBook(t *testing.T) {
	travelDate := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	validRequest := func() *models.BookRequest {
		return &models.BookRequest{
			TrainID:              "train-1",
			OriginStationID:      "station-a",
			DestinationStationID: "station-b",
			TravelDate:           travelDate,
			NumberOfSeats:        2,
		}
	}

	t.Run("Successful Booking", func(t *testing.T) {
		service, mock := newBookingServiceWithMock(t)
		expectTrainRead(mock, 10, true)

		mock.ExpectBegin()
		mock.ExpectExec("pg_advisory_xact_lock").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT seat_number FROM seat_bookings").
			WillReturnRows(sqlmock.NewRows([]string{"seat_number"}))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE booking_reference`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		now := time.Now()
		mock.ExpectQuery("INSERT INTO bookings").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("booking-1", now, now))
		for i := 0; i < 2; i++ {
			mock.ExpectQuery("INSERT INTO seat_bookings").
				WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).
					AddRow("seat-row", now))
		}
		mock.ExpectCommit()

		receipt, err := service.Book("user-1", validRequest())

		require.NoError(t, err)
		assert.Equal(t, "booking-1", receipt.BookingID)
		assert.Equal(t, []int{1, 2}, receipt.SeatNumbers)
		assert.Equal(t, 200.0, receipt.TotalFare)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Travel Date In The Past", func(t *testing.T) {
		service, mock := newBookingServiceWithMock(t)
		expectTrainRead(mock, 10, true)

		req := validRequest()
		req.TravelDate = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		_, err := service.Book("user-1", req)

		require.Error(t, err)
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Inactive Train Hidden", func(t *testing.T) {
		service, mock := newBookingServiceWithMock(t)
		expectTrainRead(mock, 10, false)

		_, err := service.Book("user-1", validRequest())

		require.Error(t, err)
		var notFoundErr *models.NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Stations Out Of Route Order", func(t *testing.T) {
		service, mock := newBookingServiceWithMock(t)
		expectTrainRead(mock, 10, true)

		req := validRequest()
		req.OriginStationID = "station-b"
		req.DestinationStationID = "station-a"
		_, err := service.Book("user-1", req)

		require.Error(t, err)
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Seat Cap Comes From Config", func(t *testing.T) {
		service, mock := newBookingServiceWithMock(t)

		req := validRequest()
		req.NumberOfSeats = 7
		_, err := service.Book("user-1", req)

		require.Error(t, err)
		var validationErr *models.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Zero Seats Rejected Before Any Read", func(t *testing.T) {
		service, mock := newBookingServiceWithMock(t)

		req := validRequest()
		req.NumberOfSeats = 0
		_, err := service.Book("user-1", req)

		require.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingServiceCancel(t *testing.T) {
	travelDate := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	t.Run("Defaults To One Seat", func(t *testing.T) {
		service, mock := newBookingServiceWithMock(t)

		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings").
			WithArgs("booking-1", "user-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "booking_reference", "user_id", "train_id",
				"origin_station_id", "destination_station_id",
				"travel_date", "departure_at",
				"number_of_seats", "fare_per_seat", "total_fare", "status",
				"cancelled_at", "created_at", "updated_at",
			}).AddRow("booking-1", "RB-20260901-ABC123", "user-1", "train-1",
				"station-a", "station-b", travelDate, travelDate.Add(6*time.Hour),
				3, 100.0, 300.0, "confirmed", nil, time.Now(), time.Now()))
		mock.ExpectExec("UPDATE seat_bookings").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE bookings").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		receipt, err := service.Cancel("user-1", "booking-1", 0)

		require.NoError(t, err)
		assert.Equal(t, 1, receipt.SeatsCancelled)
		assert.Equal(t, 2, receipt.SeatsRemaining)
		assert.Equal(t, 100.0, receipt.RefundAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Configured Window Overrides Default", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		sqlxDB := sqlx.NewDb(db, "sqlmock")
		logger := logrus.New()
		logger.SetOutput(io.Discard)

		service := NewBookingService(
			database.NewTrainRepository(&database.PostgresDB{DB: sqlxDB}),
			database.NewBookingRepository(sqlxDB),
			config.BookingConfig{MaxSeatsPerBooking: 6, CancellationWindow: 48 * time.Hour},
			logger,
		)
		now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
		service.now = func() time.Time { return now }

		// Departure 30h out clears the 24h default but not 48h
		mock.ExpectBegin()
		mock.ExpectQuery("FROM bookings").
			WithArgs("booking-1", "user-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "booking_reference", "user_id", "train_id",
				"origin_station_id", "destination_station_id",
				"travel_date", "departure_at",
				"number_of_seats", "fare_per_seat", "total_fare", "status",
				"cancelled_at", "created_at", "updated_at",
			}).AddRow("booking-1", "RB-20260901-ABC123", "user-1", "train-1",
				"station-a", "station-b", travelDate, now.Add(30*time.Hour),
				2, 100.0, 200.0, "confirmed", nil, now, now))
		mock.ExpectRollback()

		_, err = service.Cancel("user-1", "booking-1", 1)

		require.Error(t, err)
		var windowErr *models.WindowViolationError
		assert.ErrorAs(t, err, &windowErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookingServiceTrainManifest(t *testing.T) {
	travelDate := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	service, mock := newBookingServiceWithMock(t)
	expectTrainRead(mock, 10, true)
	mock.ExpectQuery("FROM bookings").
		WithArgs("train-1", travelDate.Format("2006-01-02")).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_reference", "user_id", "train_id",
			"origin_station_id", "destination_station_id",
			"travel_date", "departure_at",
			"number_of_seats", "fare_per_seat", "total_fare", "status",
			"cancelled_at", "created_at", "updated_at",
		}).AddRow("booking-1", "RB-20260901-ABC123", "user-1", "train-1",
			"station-a", "station-b", travelDate, travelDate.Add(6*time.Hour),
			2, 100.0, 200.0, "confirmed", nil, time.Now(), time.Now()))

	bookings, err := service.TrainManifest("train-1", travelDate)

	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "booking-1", bookings[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingServiceAvailableSeats(t *testing.T) {
	travelDate := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	service, mock := newBookingServiceWithMock(t)
	expectTrainRead(mock, 10, true)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("train-1", travelDate.Format("2006-01-02")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	available, err := service.AvailableSeats("train-1", travelDate)

	require.NoError(t, err)
	assert.Equal(t, 6, available)
	assert.NoError(t, mock.ExpectationsWereMet())
}
