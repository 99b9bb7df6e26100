package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RegGap-Intelligence/internal/application/analysis"
	"github.com/turtacn/RegGap-Intelligence/internal/application/reporting"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// ReportStore retrieves and deletes persisted compliance reports.
// Satisfied by the postgres ReportRepository. Saving happens inside
// the analysis service via its report repository port.
type ReportStore interface {
	GetReport(ctx context.Context, reportID string) (*reporting.ComplianceReport, error)
	ListReports(ctx context.Context, limit, offset int) ([]repositories.ReportSummary, error)
	DeleteReport(ctx context.Context, reportID string) error
}

// ReportDocument is one document in a report generation request.
type ReportDocument struct {
	DocumentID   string `json:"document_id" binding:"required"`
	Jurisdiction string `json:"jurisdiction" binding:"required"`
	Text         string `json:"text" binding:"required"`
}

// GenerateReportRequest is the body of POST /reports.
type GenerateReportRequest struct {
	Documents []ReportDocument `json:"documents" binding:"required,min=2,dive"`
}

// ReportHandler serves the compliance report endpoints.
type ReportHandler struct {
	service   *analysis.Service
	store     ReportStore
	generator *reporting.ReportGenerator
	logger    logging.Logger
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(service *analysis.Service, store ReportStore, log logging.Logger) *ReportHandler {
	return &ReportHandler{
		service:   service,
		store:     store,
		generator: reporting.NewReportGenerator(),
		logger:    log.Named("report_handler"),
	}
}

// Generate handles POST /reports: runs the batch pipeline over the
// submitted documents and returns the assembled report.
func (h *ReportHandler) Generate(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	inputs := make([]analysis.DocumentInput, 0, len(req.Documents))
	for _, doc := range req.Documents {
		inputs = append(inputs, analysis.DocumentInput{
			ID:           doc.DocumentID,
			Jurisdiction: doc.Jurisdiction,
			Text:         doc.Text,
		})
	}

	report, err := h.service.GenerateReport(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Get handles GET /reports/:reportID.
func (h *ReportHandler) Get(c *gin.Context) {
	report, err := h.store.GetReport(c.Request.Context(), c.Param("reportID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// List handles GET /reports?limit=&offset=.
func (h *ReportHandler) List(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	summaries, err := h.store.ListReports(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reports": summaries,
		"count":   len(summaries),
	})
}

// Download handles GET /reports/:reportID/download?format=. Supported
// formats are json (default) and markdown.
func (h *ReportHandler) Download(c *gin.Context) {
	report, err := h.store.GetReport(c.Request.Context(), c.Param("reportID"))
	if err != nil {
		respondError(c, err)
		return
	}

	format := c.DefaultQuery("format", "json")
	switch format {
	case "json":
		c.Header("Content-Disposition", `attachment; filename="`+report.ReportID+`.json"`)
		c.IndentedJSON(http.StatusOK, report)
	case "markdown":
		c.Header("Content-Disposition", `attachment; filename="`+report.ReportID+`.md"`)
		c.Data(http.StatusOK, "text/markdown; charset=utf-8",
			[]byte(h.generator.GenerateMarkdownReport(*report)))
	default:
		respondError(c, errors.New(errors.ErrCodeReportFormatUnsupported,
			"unsupported report format: "+format))
	}
}

// Delete handles DELETE /reports/:reportID.
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteReport(c.Request.Context(), c.Param("reportID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
