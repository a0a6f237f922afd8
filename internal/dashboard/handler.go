package dashboard

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	httperr "github.com/fitpulse-lab/fitpulse/internal/core/errors"
	"github.com/fitpulse-lab/fitpulse/internal/core/metrics"
)

// RegisterRoutes registers the read and portability routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/api/data", s.DataHandler)
	r.GET("/api/summary", s.SummaryHandler)
	r.GET("/api/profile", s.ProfileHandler)

	r.GET("/api/export", s.ExportHandler)
	r.POST("/api/import", s.ImportHandler)
	r.DELETE("/api/data", s.ClearHandler)
}

// DataHandler handles GET /api/data.
func (s *Service) DataHandler(c *gin.Context) {
	snap, err := s.Data(c.Request.Context())
	if err != nil {
		writeReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SummaryHandler handles GET /api/summary.
func (s *Service) SummaryHandler(c *gin.Context) {
	summary, err := s.Summary(c.Request.Context())
	if err != nil {
		writeReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ProfileHandler handles GET /api/profile.
func (s *Service) ProfileHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.Profile())
}

// ExportHandler handles GET /api/export. The export is the stored snapshot
// verbatim; importing it back is lossless.
func (s *Service) ExportHandler(c *gin.Context) {
	snap, err := s.Data(c.Request.Context())
	if err != nil {
		writeReadError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="fitpulse-export.json"`)
	c.JSON(http.StatusOK, snap)
}

// ImportHandler handles POST /api/import. The body size is capped so an
// oversized document cannot exhaust memory before validation runs.
func (s *Service) ImportHandler(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, s.maxImportBytes+1))
	if err != nil {
		slog.Error("Failed to read import body", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to read request body",
		})
		return
	}
	if int64(len(body)) > s.maxImportBytes {
		slog.Warn("Import body exceeds maximum size", "size", len(body), "max", s.maxImportBytes)
		c.JSON(http.StatusRequestEntityTooLarge, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Request body exceeds maximum allowed size",
			Details: map[string]interface{}{
				"max_size_mb": s.maxImportBytes / (1024 * 1024),
			},
		})
		return
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return
	}

	if err := s.Import(c.Request.Context(), &snap); err != nil {
		if errors.Is(err, ErrInvalidImport) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   err.Error(),
			})
			return
		}
		slog.Error("Import failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to import data",
		})
		return
	}

	slog.Info("Snapshot imported", "days", len(snap.DailyData))
	c.JSON(http.StatusOK, gin.H{"status": "success", "total_days": len(snap.DailyData)})
}

// ClearHandler handles DELETE /api/data.
func (s *Service) ClearHandler(c *gin.Context) {
	if err := s.Clear(c.Request.Context()); err != nil {
		slog.Error("Clear failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to clear data",
		})
		return
	}

	slog.Info("Snapshot cleared")
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func writeReadError(c *gin.Context, err error) {
	if errors.Is(err, ErrNoData) {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpNoDataError,
			Message:   "No data yet. Run /update to fetch data.",
		})
		return
	}

	slog.Error("Read failed", "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to load data",
	})
}
