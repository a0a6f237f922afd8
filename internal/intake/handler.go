package intake

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	httperr "github.com/fitpulse-lab/fitpulse/internal/core/errors"
	"github.com/fitpulse-lab/fitpulse/internal/core/metrics"
)

// RegisterRoutes registers the direct-submission routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/weight", s.WeightHandler)
	r.POST("/api/calories", s.CaloriesHandler)
	r.POST("/api/water", s.WaterHandler)
}

// WeightHandler handles POST /api/weight.
func (s *Service) WeightHandler(c *gin.Context) {
	var req struct {
		Weight float64 `json:"weight" binding:"required"`
		Date   string  `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalid(c, err)
		return
	}

	date, err := s.SubmitWeight(c.Request.Context(), req.Weight, req.Date)
	if err != nil {
		writeSubmissionError(c, err)
		return
	}

	slog.Info("Weight recorded", "date", date, "weight", req.Weight)
	c.JSON(http.StatusOK, gin.H{"status": "success", "date": date})
}

// CaloriesHandler handles POST /api/calories (food-energy log entries).
func (s *Service) CaloriesHandler(c *gin.Context) {
	var req struct {
		Calories int       `json:"calories" binding:"required"`
		Datetime time.Time `json:"datetime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalid(c, err)
		return
	}

	date, err := s.SubmitFood(c.Request.Context(), req.Calories, req.Datetime)
	if err != nil {
		writeSubmissionError(c, err)
		return
	}

	slog.Info("Food entry recorded", "date", date, "calories", req.Calories)
	c.JSON(http.StatusOK, gin.H{"status": "success", "date": date})
}

// WaterHandler handles POST /api/water.
func (s *Service) WaterHandler(c *gin.Context) {
	var req struct {
		WaterML int    `json:"water_ml" binding:"required"`
		Date    string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalid(c, err)
		return
	}

	date, err := s.SubmitWater(c.Request.Context(), req.WaterML, req.Date)
	if err != nil {
		writeSubmissionError(c, err)
		return
	}

	slog.Info("Water intake recorded", "date", date, "water_ml", req.WaterML)
	c.JSON(http.StatusOK, gin.H{"status": "success", "date": date})
}

func writeInvalid(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidJsonError,
		Message:   "Invalid request body",
		Details:   err.Error(),
	})
}

func writeSubmissionError(c *gin.Context, err error) {
	if errors.Is(err, metrics.ErrUninitializedHistory) {
		c.JSON(http.StatusConflict, httperr.ErrorResponse{
			ErrorType: httperr.HttpUninitializedHistoryError,
			Message:   "No tracked history yet - run an update first",
		})
		return
	}

	if errors.Is(err, ErrInvalidSubmission) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   err.Error(),
		})
		return
	}

	slog.Error("Submission failed", "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to persist submission",
	})
}
