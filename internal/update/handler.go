package update

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	httperr "github.com/fitpulse-lab/fitpulse/internal/core/errors"
)

// RegisterRoutes registers the update trigger route.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	// Triggered by cron or the dashboard's sync button.
	r.POST("/update", s.UpdateHandler)
}

// UpdateHandler handles HTTP POST /update.
func (s *Service) UpdateHandler(c *gin.Context) {
	result, err := s.Update(c.Request.Context())
	if err != nil {
		slog.Error("Update failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to update data",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"updated":    result.Updated,
		"total_days": result.TotalDays,
	})
}
