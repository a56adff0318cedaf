// Package handler provides HTTP handlers for the API.
package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/heliograph/heliograph/internal/model"
	"github.com/heliograph/heliograph/internal/report"
	"github.com/heliograph/heliograph/internal/store"
	"github.com/heliograph/heliograph/pkg/errors"
	"github.com/heliograph/heliograph/pkg/logger"
)

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	engine *report.Engine
	store  store.Store
}

// NewReportHandler creates a new report handler
func NewReportHandler(e *report.Engine, s store.Store) *ReportHandler {
	return &ReportHandler{engine: e, store: s}
}

// CreateReportRequest represents the request body for creating a report
type CreateReportRequest struct {
	Template string `json:"template"` // layout template name (default: basic)
	Variant  string `json:"variant"`  // plain or chart (default: plain)
	Text     string `json:"text"`     // report body, may carry inline directives
}

// UpgradeReportRequest represents the request body for upgrading a report
type UpgradeReportRequest struct {
	Text string `json:"text" binding:"required"` // replacement body text
}

// ReportResponse is the API representation of a report record
type ReportResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Version      int               `json:"version"`
	Template     string            `json:"template"`
	Variant      string            `json:"variant"`
	Content      string            `json:"content"`
	Directives   map[string]string `json:"directives"`
	ArtifactPath string            `json:"artifact_path,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func toReportResponse(record *model.ReportRecord) ReportResponse {
	return ReportResponse{
		ID:           record.ID,
		Name:         record.Name,
		Version:      record.Version,
		Template:     record.Template,
		Variant:      string(record.Variant),
		Content:      record.Content,
		Directives:   record.DirectiveMap(),
		ArtifactPath: record.ArtifactPath,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

// CreateReport handles POST /api/v1/reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	record, err := h.engine.GenerateAndWait(c.Request.Context(), report.GenerateRequest{
		Template: req.Template,
		Variant:  model.ReportVariant(req.Variant),
		Text:     req.Text,
	})
	if err != nil {
		logger.Warn("Report generation failed",
			zap.String("template", req.Template),
			zap.String("variant", req.Variant),
			zap.Error(err),
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toReportResponse(record))
}

// ListReports handles GET /api/v1/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
	records, err := h.store.Report().List()
	if err != nil {
		c.Error(err)
		return
	}

	responses := make([]ReportResponse, 0, len(records))
	for i := range records {
		responses = append(responses, toReportResponse(&records[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"total":   len(responses),
		"reports": responses,
	})
}

// GetReport handles GET /api/v1/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	record, err := h.store.Report().GetByID(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toReportResponse(record))
}

// UpgradeReport handles POST /api/v1/reports/:id/upgrade
func (h *ReportHandler) UpgradeReport(c *gin.Context) {
	var req UpgradeReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    errors.ErrCodeValidation,
			"message": "Invalid request body: " + err.Error(),
		})
		return
	}

	record, err := h.engine.Upgrade(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toReportResponse(record))
}

// DownloadReport handles GET /api/v1/reports/:id/download
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	record, err := h.store.Report().GetByID(c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	if record.ArtifactPath == "" {
		c.Error(errors.New(errors.ErrCodeNotFound, "report has no stored artifact"))
		return
	}
	if _, err := os.Stat(record.ArtifactPath); err != nil {
		c.Error(errors.New(errors.ErrCodeNotFound, "report artifact is missing from disk"))
		return
	}

	c.FileAttachment(record.ArtifactPath, filepath.Base(record.ArtifactPath))
}
