package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/RegGap-Intelligence/internal/application/analysis"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
)

// AnalysisStore persists and retrieves document analyses. Satisfied by
// the postgres DocumentRepository.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, doc analysis.DocumentAnalysis) error
	GetAnalysis(ctx context.Context, documentID string) (*analysis.DocumentAnalysis, error)
	ListAnalyses(ctx context.Context, jurisdiction string, limit, offset int) ([]analysis.DocumentAnalysis, error)
	DeleteAnalysis(ctx context.Context, documentID string) error
}

// AnalyzeRequest is the body of POST /analyses.
type AnalyzeRequest struct {
	DocumentID   string `json:"document_id" binding:"required"`
	Jurisdiction string `json:"jurisdiction" binding:"required"`
	Text         string `json:"text" binding:"required"`
}

// CompareRequest is the body of POST /comparisons.
type CompareRequest struct {
	JurisdictionA string `json:"jurisdiction_a" binding:"required"`
	JurisdictionB string `json:"jurisdiction_b" binding:"required"`
	TextA         string `json:"text_a" binding:"required"`
	TextB         string `json:"text_b" binding:"required"`
}

// AnalysisHandler serves the analysis and comparison endpoints.
type AnalysisHandler struct {
	service *analysis.Service
	store   AnalysisStore
	logger  logging.Logger
}

// NewAnalysisHandler creates an AnalysisHandler. store may be nil;
// analyses are then not persisted.
func NewAnalysisHandler(service *analysis.Service, store AnalysisStore, log logging.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		store:   store,
		logger:  log.Named("analysis_handler"),
	}
}

// Analyze handles POST /analyses: runs the single-document pipeline
// and persists the result.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := h.service.AnalyzeText(c.Request.Context(), req.Text, req.DocumentID, req.Jurisdiction)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.store != nil {
		if err := h.store.SaveAnalysis(c.Request.Context(), *result); err != nil {
			h.logger.Warn("failed to persist analysis",
				logging.String("document_id", req.DocumentID), logging.Err(err))
		}
	}
	c.JSON(http.StatusOK, result)
}

// Get handles GET /analyses/:documentID.
func (h *AnalysisHandler) Get(c *gin.Context) {
	doc, err := h.store.GetAnalysis(c.Request.Context(), c.Param("documentID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// List handles GET /analyses?jurisdiction=&limit=&offset=.
func (h *AnalysisHandler) List(c *gin.Context) {
	limit, offset := parseLimitOffset(c)
	docs, err := h.store.ListAnalyses(c.Request.Context(), c.Query("jurisdiction"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"analyses": docs,
		"count":    len(docs),
	})
}

// Delete handles DELETE /analyses/:documentID.
func (h *AnalysisHandler) Delete(c *gin.Context) {
	if err := h.store.DeleteAnalysis(c.Request.Context(), c.Param("documentID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Compare handles POST /comparisons: analyzes both texts and reports
// the jurisdictional gaps between them.
func (h *AnalysisHandler) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := h.service.CompareTexts(c.Request.Context(), req.TextA, req.TextB, req.JurisdictionA, req.JurisdictionB)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
