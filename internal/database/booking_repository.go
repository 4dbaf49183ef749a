package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/railsetu/railway-reservation-backend/internal/models"
)

// BookingRepository is the seat/booking ledger. Every mutation of booking
// and seat rows goes through its guarded, transactional transitions; no
// other code path writes these tables.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const dateLayout = "2006-01-02"

// GenerateBookingReference generates a unique booking reference.
// Format: RB-YYYYMMDD-XXXXXX. The uniqueness check runs on q so a caller
// already inside a transaction never needs a second pool connection.
func (r *BookingRepository) GenerateBookingReference(q sqlx.Queryer) (string, error) {
	todayStr := time.Now().Format("20060102")

	for attempts := 0; attempts < 10; attempts++ {
		randomBytes := make([]byte, 3)
		if _, err := rand.Read(randomBytes); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		randomStr := strings.ToUpper(hex.EncodeToString(randomBytes))

		newRef := fmt.Sprintf("RB-%s-%s", todayStr, randomStr)

		var count int
		err := sqlx.Get(q, &count, `SELECT COUNT(*) FROM bookings WHERE booking_reference = $1`, newRef)
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}

		if count == 0 {
			return newRef, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique booking reference after 10 attempts")
}

// Admit runs the admission transition: inside one transaction it reads the
// committed seats for the train and travel date, evaluates the capacity
// guard, and inserts the booking with its seat rows. The booking prototype
// carries user, train, segment, dates and fare-per-seat; requestedSeats
// selects explicit seats, or the lowest available ones are assigned when
// it is empty and booking.NumberOfSeats is set.
func (r *BookingRepository) Admit(train *models.Train, booking *models.Booking, requestedSeats []int) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	travelDate := booking.TravelDate.Format(dateLayout)

	// Serialize admissions for the same train+date; unrelated keys proceed
	// concurrently.
	if err := lockTrainDate(tx, train.ID, travelDate); err != nil {
		return nil, err
	}

	committed, err := committedSeatNumbers(tx, train.ID, travelDate)
	if err != nil {
		return nil, err
	}

	available := train.TotalSeats - len(committed)

	var seatNumbers []int
	if len(requestedSeats) > 0 {
		taken := takenOf(requestedSeats, committed)
		if len(taken) > 0 {
			return nil, &models.CapacityError{
				Requested:  len(requestedSeats),
				Available:  available,
				TakenSeats: taken,
			}
		}
		for _, n := range requestedSeats {
			if n > train.TotalSeats {
				return nil, &models.ValidationError{
					Message: fmt.Sprintf("seat %d does not exist on this train", n),
				}
			}
		}
		seatNumbers = requestedSeats
	} else {
		if booking.NumberOfSeats > available {
			return nil, &models.CapacityError{
				Requested: booking.NumberOfSeats,
				Available: available,
			}
		}
		seatNumbers = lowestFreeSeats(train.TotalSeats, committed, booking.NumberOfSeats)
	}

	booking.NumberOfSeats = len(seatNumbers)
	totalFare, err := train.FareFor(booking.NumberOfSeats)
	if err != nil {
		return nil, err
	}
	booking.TotalFare = totalFare
	booking.Status = models.BookingStatusConfirmed

	ref, err := r.GenerateBookingReference(tx)
	if err != nil {
		return nil, err
	}
	booking.BookingReference = ref

	bookingQuery := `
		INSERT INTO bookings (
			booking_reference, user_id, train_id,
			origin_station_id, destination_station_id,
			travel_date, departure_at,
			number_of_seats, fare_per_seat, total_fare, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowx(bookingQuery,
		booking.BookingReference, booking.UserID, booking.TrainID,
		booking.OriginStationID, booking.DestinationStationID,
		travelDate, booking.DepartureAt,
		booking.NumberOfSeats, booking.FarePerSeat, booking.TotalFare, booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	seatQuery := `
		INSERT INTO seat_bookings (booking_id, train_id, travel_date, seat_number, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	seats := make([]models.SeatBooking, 0, len(seatNumbers))
	for _, n := range seatNumbers {
		seat := models.SeatBooking{
			BookingID:  booking.ID,
			TrainID:    booking.TrainID,
			TravelDate: booking.TravelDate,
			SeatNumber: n,
			Status:     models.SeatBookingConfirmed,
		}
		err = tx.QueryRowx(seatQuery,
			seat.BookingID, seat.TrainID, travelDate, seat.SeatNumber, seat.Status,
		).Scan(&seat.ID, &seat.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, &models.ConflictError{}
			}
			return nil, fmt.Errorf("failed to book seat %d: %w", n, err)
		}
		seats = append(seats, seat)
	}
	booking.Seats = seats

	if err = tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return nil, &models.ConflictError{}
		}
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	return booking, nil
}

// Cancel runs the cancellation transition for seatsToCancel seats. The
// guards and the writes they authorize execute under one row lock on the
// booking, so an interleaved cancel cannot double-release seats. The
// window is the minimum lead time before departure.
func (r *BookingRepository) Cancel(bookingID, userID string, seatsToCancel int, now time.Time, window time.Duration) (*models.CancelReceipt, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking := &models.Booking{}
	query := `
		SELECT id, booking_reference, user_id, train_id,
		       origin_station_id, destination_station_id,
		       travel_date, departure_at,
		       number_of_seats, fare_per_seat, total_fare, status,
		       cancelled_at, created_at, updated_at
		FROM bookings
		WHERE id = $1 AND user_id = $2
		FOR UPDATE`

	err = tx.Get(booking, query, bookingID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "booking"}
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if err := booking.CanCancel(seatsToCancel, now, window); err != nil {
		return nil, err
	}

	// Release the highest-numbered seats first
	result, err := tx.Exec(`
		UPDATE seat_bookings
		SET status = 'cancelled', cancelled_at = $1
		WHERE id IN (
			SELECT id FROM seat_bookings
			WHERE booking_id = $2 AND status = 'confirmed'
			ORDER BY seat_number DESC
			LIMIT $3
		)`,
		now, bookingID, seatsToCancel)
	if err != nil {
		return nil, fmt.Errorf("failed to release seats: %w", err)
	}

	released, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to count released seats: %w", err)
	}
	if released != int64(seatsToCancel) {
		return nil, &models.ConflictError{
			Message: "seat rows disagree with the booking, please retry",
		}
	}

	booking.ApplyCancellation(seatsToCancel, now)

	_, err = tx.Exec(`
		UPDATE bookings
		SET number_of_seats = $1, total_fare = $2, status = $3,
		    cancelled_at = $4, updated_at = $5
		WHERE id = $6`,
		booking.NumberOfSeats, booking.TotalFare, booking.Status,
		booking.CancelledAt, booking.UpdatedAt, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	return &models.CancelReceipt{
		BookingID:      booking.ID,
		SeatsCancelled: seatsToCancel,
		SeatsRemaining: booking.NumberOfSeats,
		TotalFare:      booking.TotalFare,
		RefundAmount:   float64(seatsToCancel) * booking.FarePerSeat,
		Status:         booking.Status,
	}, nil
}

// GetByID retrieves a booking owned by the given user, with its seats
func (r *BookingRepository) GetByID(bookingID, userID string) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		SELECT id, booking_reference, user_id, train_id,
		       origin_station_id, destination_station_id,
		       travel_date, departure_at,
		       number_of_seats, fare_per_seat, total_fare, status,
		       cancelled_at, created_at, updated_at
		FROM bookings
		WHERE id = $1 AND user_id = $2`

	err := r.db.Get(booking, query, bookingID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "booking"}
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	seats, err := r.getSeats(bookingID)
	if err != nil {
		return nil, err
	}
	booking.Seats = seats

	return booking, nil
}

// ListByUser retrieves all bookings for a user ordered by travel date
// descending. Confirmed legacy rows missing a seat count are repaired to
// one seat before the read; the repair is idempotent.
func (r *BookingRepository) ListByUser(userID string) ([]models.Booking, error) {
	_, err := r.db.Exec(`
		UPDATE bookings
		SET number_of_seats = 1, total_fare = fare_per_seat, updated_at = NOW()
		WHERE user_id = $1 AND status = 'confirmed'
		  AND (number_of_seats IS NULL OR number_of_seats = 0)`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to repair legacy bookings: %w", err)
	}

	query := `
		SELECT id, booking_reference, user_id, train_id,
		       origin_station_id, destination_station_id,
		       travel_date, departure_at,
		       COALESCE(number_of_seats, 0) AS number_of_seats,
		       fare_per_seat, COALESCE(total_fare, 0) AS total_fare, status,
		       cancelled_at, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY travel_date DESC`

	var bookings []models.Booking
	if err := r.db.Select(&bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListByTrainDate retrieves the confirmed bookings for a train and travel
// date, the passenger manifest for one departure
func (r *BookingRepository) ListByTrainDate(trainID string, travelDate time.Time) ([]models.Booking, error) {
	query := `
		SELECT id, booking_reference, user_id, train_id,
		       origin_station_id, destination_station_id,
		       travel_date, departure_at,
		       number_of_seats, fare_per_seat, total_fare, status,
		       cancelled_at, created_at, updated_at
		FROM bookings
		WHERE train_id = $1 AND travel_date = $2 AND status = 'confirmed'
		ORDER BY created_at`

	var bookings []models.Booking
	if err := r.db.Select(&bookings, query, trainID, travelDate.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("failed to list train bookings: %w", err)
	}
	return bookings, nil
}

// SeatAvailability returns the status of every seat on a train for a
// travel date, ordered by seat number
func (r *BookingRepository) SeatAvailability(train *models.Train, travelDate time.Time) ([]models.SeatAvailability, error) {
	query := `
		SELECT gs.n AS seat_number,
		       CASE WHEN sb.id IS NULL THEN 'available' ELSE 'booked' END AS status
		FROM generate_series(1, $1) AS gs(n)
		LEFT JOIN seat_bookings sb
		  ON sb.train_id = $2
		 AND sb.travel_date = $3
		 AND sb.seat_number = gs.n
		 AND sb.status = 'confirmed'
		ORDER BY gs.n`

	rows, err := r.db.Query(query, train.TotalSeats, train.ID, travelDate.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get seat availability: %w", err)
	}
	defer rows.Close()

	seats := make([]models.SeatAvailability, 0, train.TotalSeats)
	for rows.Next() {
		var seat models.SeatAvailability
		if err := rows.Scan(&seat.SeatNumber, &seat.Status); err != nil {
			return nil, fmt.Errorf("failed to scan seat availability: %w", err)
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

// CountCommittedSeats returns the number of confirmed seats for a train
// and travel date
func (r *BookingRepository) CountCommittedSeats(trainID string, travelDate time.Time) (int, error) {
	var count int
	err := r.db.Get(&count, `
		SELECT COUNT(*) FROM seat_bookings
		WHERE train_id = $1 AND travel_date = $2 AND status = 'confirmed'`,
		trainID, travelDate.Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to count committed seats: %w", err)
	}
	return count, nil
}

func (r *BookingRepository) getSeats(bookingID string) ([]models.SeatBooking, error) {
	query := `
		SELECT id, booking_id, train_id, travel_date, seat_number, status,
		       cancelled_at, created_at
		FROM seat_bookings
		WHERE booking_id = $1 AND status = 'confirmed'
		ORDER BY seat_number`

	var seats []models.SeatBooking
	if err := r.db.Select(&seats, query, bookingID); err != nil {
		return nil, fmt.Errorf("failed to get booking seats: %w", err)
	}
	return seats, nil
}

// lockTrainDate takes a transaction-scoped advisory lock on the train+date
// admission key
func lockTrainDate(tx *sqlx.Tx, trainID, travelDate string) error {
	_, err := tx.Exec(
		`SELECT pg_advisory_xact_lock(hashtextextended($1 || ':' || $2, 0))`,
		trainID, travelDate)
	if err != nil {
		return fmt.Errorf("failed to lock train/date: %w", err)
	}
	return nil
}

// committedSeatNumbers reads the confirmed seat numbers for a train+date
// inside the admitting transaction, locking the rows it sees
func committedSeatNumbers(tx *sqlx.Tx, trainID, travelDate string) ([]int, error) {
	var numbers []int
	err := tx.Select(&numbers, `
		SELECT seat_number FROM seat_bookings
		WHERE train_id = $1 AND travel_date = $2 AND status = 'confirmed'
		ORDER BY seat_number
		FOR UPDATE`,
		trainID, travelDate)
	if err != nil {
		return nil, fmt.Errorf("failed to read committed seats: %w", err)
	}
	return numbers, nil
}

// takenOf returns the requested seat numbers that are already committed
func takenOf(requested, committed []int) []int {
	committedSet := make(map[int]bool, len(committed))
	for _, n := range committed {
		committedSet[n] = true
	}
	var taken []int
	for _, n := range requested {
		if committedSet[n] {
			taken = append(taken, n)
		}
	}
	return taken
}

// lowestFreeSeats assigns the count lowest seat numbers not yet committed
func lowestFreeSeats(totalSeats int, committed []int, count int) []int {
	committedSet := make(map[int]bool, len(committed))
	for _, n := range committed {
		committedSet[n] = true
	}
	seats := make([]int, 0, count)
	for n := 1; n <= totalSeats && len(seats) < count; n++ {
		if !committedSet[n] {
			seats = append(seats, n)
		}
	}
	return seats
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505)
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
