package client

import (
	"context"
	"fmt"
	"net/url"
)

// GlossaryClient accesses the cross-jurisdiction term glossary
type GlossaryClient struct {
	client *Client
}

// TermDefinition is one stored definition of a glossary term
type TermDefinition struct {
	Term         string  `json:"term"`
	DocumentID   string  `json:"document_id"`
	Jurisdiction string  `json:"jurisdiction"`
	SectionID    string  `json:"section_id,omitempty"`
	Text         string  `json:"text"`
	Confidence   float64 `json:"confidence"`
}

// TermResult lists every stored definition of a term
type TermResult struct {
	Term        string           `json:"term"`
	Definitions []TermDefinition `json:"definitions"`
	Count       int              `json:"count"`
}

// ReferencesResult lists terms transitively referenced from a term's
// definition
type ReferencesResult struct {
	Term       string   `json:"term"`
	References []string `json:"references"`
	Count      int      `json:"count"`
}

// TermJurisdictions pairs a term with the jurisdictions defining it
type TermJurisdictions struct {
	Term          string   `json:"term"`
	Jurisdictions []string `json:"jurisdictions"`
}

// ConflictCandidatesResult lists terms defined in multiple jurisdictions
type ConflictCandidatesResult struct {
	Terms []TermJurisdictions `json:"terms"`
	Count int                 `json:"count"`
}

// Term fetches every stored definition of a term across jurisdictions
func (gc *GlossaryClient) Term(ctx context.Context, term string) (*TermResult, error) {
	var result TermResult
	if err := gc.client.get(ctx, "/glossary/terms/"+url.PathEscape(term), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// References fetches terms referenced from the term's definition up to
// the given depth. Depth 0 uses the server default.
func (gc *GlossaryClient) References(ctx context.Context, term string, depth int) (*ReferencesResult, error) {
	path := "/glossary/terms/" + url.PathEscape(term) + "/references"
	if depth > 0 {
		path += fmt.Sprintf("?depth=%d", depth)
	}

	var result ReferencesResult
	if err := gc.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConflictCandidates fetches terms defined in at least min
// jurisdictions. Min 0 uses the server default.
func (gc *GlossaryClient) ConflictCandidates(ctx context.Context, min int) (*ConflictCandidatesResult, error) {
	path := "/glossary/conflicts"
	if min > 0 {
		path += fmt.Sprintf("?min=%d", min)
	}

	var result ConflictCandidatesResult
	if err := gc.client.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
