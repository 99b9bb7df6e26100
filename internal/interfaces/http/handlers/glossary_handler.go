package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	graphrepos "github.com/turtacn/RegGap-Intelligence/internal/infrastructure/database/neo4j/repositories"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
)

// TermGraph queries the definition cross-reference graph. Satisfied by
// the neo4j TermGraphRepository.
type TermGraph interface {
	GetTermDefinitions(ctx context.Context, term string) ([]graphrepos.TermDefinition, error)
	GetReferencedTerms(ctx context.Context, term string, depth int) ([]string, error)
	GetMultiJurisdictionTerms(ctx context.Context, minJurisdictions int) ([]graphrepos.TermJurisdictions, error)
}

// GlossaryHandler serves the cross-jurisdiction term glossary.
type GlossaryHandler struct {
	graph  TermGraph
	logger logging.Logger
}

// NewGlossaryHandler creates a GlossaryHandler.
func NewGlossaryHandler(graph TermGraph, log logging.Logger) *GlossaryHandler {
	return &GlossaryHandler{
		graph:  graph,
		logger: log.Named("glossary_handler"),
	}
}

// GetTerm handles GET /glossary/terms/:term: every stored definition
// of the term across jurisdictions.
func (h *GlossaryHandler) GetTerm(c *gin.Context) {
	term := c.Param("term")
	defs, err := h.graph.GetTermDefinitions(c.Request.Context(), term)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"term":        term,
		"definitions": defs,
		"count":       len(defs),
	})
}

// GetReferences handles GET /glossary/terms/:term/references?depth=:
// terms transitively referenced from the term's definition.
func (h *GlossaryHandler) GetReferences(c *gin.Context) {
	term := c.Param("term")
	depth := 1
	if v := c.Query("depth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			depth = n
		}
	}

	refs, err := h.graph.GetReferencedTerms(c.Request.Context(), term, depth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"term":       term,
		"references": refs,
		"count":      len(refs),
	})
}

// GetConflictCandidates handles GET /glossary/conflicts?min=: terms
// defined in multiple jurisdictions, the raw material for definition
// conflict review.
func (h *GlossaryHandler) GetConflictCandidates(c *gin.Context) {
	min := 2
	if v := c.Query("min"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			min = n
		}
	}

	terms, err := h.graph.GetMultiJurisdictionTerms(c.Request.Context(), min)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"terms": terms,
		"count": len(terms),
	})
}
