package database

import (
	"database/sql"
	"fmt"

	"github.com/railsetu/railway-reservation-backend/internal/models"
)

// TrainRepository handles database operations for trains and routes
type TrainRepository struct {
	db DB
}

// NewTrainRepository creates a new TrainRepository
func NewTrainRepository(db DB) *TrainRepository {
	return &TrainRepository{db: db}
}

// GetByID retrieves a train with its ordered route
func (r *TrainRepository) GetByID(trainID string) (*models.Train, error) {
	train := &models.Train{}
	query := `
		SELECT id, train_number, name, total_seats, fare_per_seat, active,
		       created_at, updated_at
		FROM trains
		WHERE id = $1`

	err := r.db.Get(train, query, trainID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &models.NotFoundError{Resource: "train"}
		}
		return nil, fmt.Errorf("failed to get train: %w", err)
	}

	route, err := r.GetRoute(trainID)
	if err != nil {
		return nil, err
	}
	train.Route = route

	return train, nil
}

// GetRoute retrieves a train's route ordered by sequence number
func (r *TrainRepository) GetRoute(trainID string) ([]models.RouteStop, error) {
	query := `
		SELECT tr.id, tr.train_id, tr.station_id, s.code AS station_code,
		       s.name AS station_name, tr.sequence_number,
		       tr.arrival_time, tr.departure_time
		FROM train_routes tr
		JOIN stations s ON s.id = tr.station_id
		WHERE tr.train_id = $1
		ORDER BY tr.sequence_number`

	var route []models.RouteStop
	if err := r.db.Select(&route, query, trainID); err != nil {
		return nil, fmt.Errorf("failed to get train route: %w", err)
	}
	return route, nil
}

// Search finds active trains that serve both stations in route order
func (r *TrainRepository) Search(originStationID, destinationStationID string) ([]models.Train, error) {
	query := `
		SELECT t.id, t.train_number, t.name, t.total_seats, t.fare_per_seat,
		       t.active, t.created_at, t.updated_at
		FROM trains t
		JOIN train_routes o ON o.train_id = t.id AND o.station_id = $1
		JOIN train_routes d ON d.train_id = t.id AND d.station_id = $2
		WHERE t.active = true
		  AND o.sequence_number < d.sequence_number
		ORDER BY t.train_number`

	var trains []models.Train
	err := r.db.Select(&trains, query, originStationID, destinationStationID)
	if err != nil {
		return nil, fmt.Errorf("failed to search trains: %w", err)
	}
	return trains, nil
}

// ListStations retrieves all stations ordered by code
func (r *TrainRepository) ListStations() ([]models.Station, error) {
	query := `
		SELECT id, code, name, city, created_at, updated_at
		FROM stations
		ORDER BY code`

	var stations []models.Station
	if err := r.db.Select(&stations, query); err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}
	return stations, nil
}
