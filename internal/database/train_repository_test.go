package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railsetu/railway-reservation-backend/internal/models"
)

func newTrainRepoWithMock(t *testing.T) (*TrainRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTrainRepository(&PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}), mock
}

func TestTrainRepositoryGetByID(t *testing.T) {
	now := time.Now()

	t.Run("Train With Route", func(t *testing.T) {
		repo, mock := newTrainRepoWithMock(t)
		mock.ExpectQuery("FROM trains").
			WithArgs("train-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "train_number", "name", "total_seats", "fare_per_seat",
				"active", "created_at", "updated_at",
			}).AddRow("train-1", "1015", "Udarata Menike", 120, 450.0, true, now, now))
		mock.ExpectQuery("FROM train_routes").
			WithArgs("train-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "train_id", "station_id", "station_code", "station_name",
				"sequence_number", "arrival_time", "departure_time",
			}).
				AddRow("route-1", "train-1", "station-a", "CMB", "Colombo Fort", 1, nil, "06:30").
				AddRow("route-2", "train-1", "station-b", "KDY", "Kandy", 2, "09:45", nil))

		train, err := repo.GetByID("train-1")

		require.NoError(t, err)
		assert.Equal(t, "1015", train.TrainNumber)
		assert.Equal(t, 120, train.TotalSeats)
		require.Len(t, train.Route, 2)
		assert.Equal(t, "CMB", train.Route[0].StationCode)
		assert.Equal(t, 2, train.Route[1].SequenceNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Train Not Found", func(t *testing.T) {
		repo, mock := newTrainRepoWithMock(t)
		mock.ExpectQuery("FROM trains").
			WithArgs("train-x").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID("train-x")

		require.Error(t, err)
		var notFoundErr *models.NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTrainRepositorySearch(t *testing.T) {
	now := time.Now()

	repo, mock := newTrainRepoWithMock(t)
	mock.ExpectQuery("JOIN train_routes").
		WithArgs("station-a", "station-b").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "train_number", "name", "total_seats", "fare_per_seat",
			"active", "created_at", "updated_at",
		}).
			AddRow("train-1", "1015", "Udarata Menike", 120, 450.0, true, now, now).
			AddRow("train-2", "1005", "Podi Menike", 96, 380.0, true, now, now))

	trains, err := repo.Search("station-a", "station-b")

	require.NoError(t, err)
	require.Len(t, trains, 2)
	assert.Equal(t, "1015", trains[0].TrainNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrainRepositoryListStations(t *testing.T) {
	now := time.Now()

	repo, mock := newTrainRepoWithMock(t)
	mock.ExpectQuery("FROM stations").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "code", "name", "city", "created_at", "updated_at",
		}).
			AddRow("station-a", "CMB", "Colombo Fort", "Colombo", now, now).
			AddRow("station-b", "KDY", "Kandy", "Kandy", now, now))

	stations, err := repo.ListStations()

	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, "CMB", stations[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
