package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/railsetu/railway-reservation-backend/internal/database"
)

// TrainHandler handles train and station lookup endpoints
type TrainHandler struct {
	trainRepo *database.TrainRepository
}

// NewTrainHandler creates a new TrainHandler
func NewTrainHandler(trainRepo *database.TrainRepository) *TrainHandler {
	return &TrainHandler{trainRepo: trainRepo}
}

// GetTrain retrieves a train with its route
// GET /api/v1/trains/:id
func (h *TrainHandler) GetTrain(c *gin.Context) {
	train, err := h.trainRepo.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, train)
}

// SearchTrains finds trains serving an origin/destination pair
// GET /api/v1/trains?from=<station_id>&to=<station_id>
func (h *TrainHandler) SearchTrains(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to station ids are required"})
		return
	}

	trains, err := h.trainRepo.Search(from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trains": trains, "count": len(trains)})
}

// ListStations retrieves all stations
// GET /api/v1/stations
func (h *TrainHandler) ListStations(c *gin.Context) {
	stations, err := h.trainRepo.ListStations()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stations": stations})
}
