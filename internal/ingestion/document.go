// Package ingestion loads regulatory documents from disk and normalizes their
// text for downstream clause analysis.  Loaders produce RegulatoryDocument
// values; the TextNormalizer turns raw document text into a NormalizedText
// with consistent whitespace, citations, and section structure.
package ingestion

import (
	"time"

	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// RegulatoryDocument is a loaded regulatory text together with its provenance.
type RegulatoryDocument struct {
	Content       string                 `json:"content"`
	SourcePath    string                 `json:"source_path"`
	Jurisdiction  string                 `json:"jurisdiction"`
	DocumentType  string                 `json:"document_type"`
	Version       string                 `json:"version"`
	EffectiveDate *time.Time             `json:"effective_date,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// DocumentOption customises optional RegulatoryDocument fields at load time.
type DocumentOption func(*RegulatoryDocument)

// WithVersion sets the document version (defaults to "1.0").
func WithVersion(version string) DocumentOption {
	return func(d *RegulatoryDocument) { d.Version = version }
}

// WithEffectiveDate sets the date the regulation takes effect.
func WithEffectiveDate(t time.Time) DocumentOption {
	return func(d *RegulatoryDocument) { d.EffectiveDate = &t }
}

// WithMetadata attaches free-form metadata to the document.
func WithMetadata(md map[string]interface{}) DocumentOption {
	return func(d *RegulatoryDocument) { d.Metadata = md }
}

// NewRegulatoryDocument constructs a document and rejects empty content.
// Every loader funnels through this constructor so the empty-content rule is
// enforced uniformly.
func NewRegulatoryDocument(content, sourcePath, jurisdiction, documentType string, opts ...DocumentOption) (*RegulatoryDocument, error) {
	if content == "" {
		return nil, errors.New(errors.ErrCodeDocumentEmpty, "document content cannot be empty").
			WithDetail("source=" + sourcePath)
	}

	doc := &RegulatoryDocument{
		Content:      content,
		SourcePath:   sourcePath,
		Jurisdiction: jurisdiction,
		DocumentType: documentType,
		Version:      "1.0",
	}
	for _, opt := range opts {
		opt(doc)
	}
	return doc, nil
}
