package minio

import (
	"context"
	"fmt"
	"time"
)

// Content types for rendered report artifacts.
const (
	contentTypeJSON     = "application/json"
	contentTypeMarkdown = "text/markdown"
	contentTypeText     = "text/plain"
)

// ArtifactStore maps regulatory documents and rendered reports onto
// object storage keys.
type ArtifactStore struct {
	repo      ObjectStorageRepository
	documents string
	reports   string
}

// NewArtifactStore creates an ArtifactStore using the client's
// configured document and report buckets.
func NewArtifactStore(client *MinIOClient, repo ObjectStorageRepository) *ArtifactStore {
	return &ArtifactStore{
		repo:      repo,
		documents: client.DocumentsBucket(),
		reports:   client.ReportsBucket(),
	}
}

func documentKey(jurisdiction, documentID string) string {
	return fmt.Sprintf("%s/%s.txt", jurisdiction, documentID)
}

func reportKey(reportID, format string) string {
	ext := "txt"
	switch format {
	case "json":
		ext = "json"
	case "markdown":
		ext = "md"
	}
	return fmt.Sprintf("%s/%s.%s", reportID, reportID, ext)
}

func reportContentType(format string) string {
	switch format {
	case "json":
		return contentTypeJSON
	case "markdown":
		return contentTypeMarkdown
	default:
		return contentTypeText
	}
}

// PutDocument stores a source regulatory text, tagged by jurisdiction.
func (s *ArtifactStore) PutDocument(ctx context.Context, documentID, jurisdiction string, content []byte) (*UploadResult, error) {
	if documentID == "" || jurisdiction == "" {
		return nil, ErrInvalidRequest
	}
	return s.repo.Upload(ctx, &UploadRequest{
		Bucket:      s.documents,
		ObjectKey:   documentKey(jurisdiction, documentID),
		Data:        content,
		ContentType: contentTypeText,
		Tags:        map[string]string{"jurisdiction": jurisdiction},
	})
}

// GetDocument returns a stored source text.
func (s *ArtifactStore) GetDocument(ctx context.Context, documentID, jurisdiction string) ([]byte, error) {
	res, err := s.repo.Download(ctx, s.documents, documentKey(jurisdiction, documentID))
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// ListDocuments lists stored documents for a jurisdiction.
func (s *ArtifactStore) ListDocuments(ctx context.Context, jurisdiction string) ([]*ObjectMetadata, error) {
	res, err := s.repo.List(ctx, s.documents, jurisdiction+"/", nil)
	if err != nil {
		return nil, err
	}
	return res.Objects, nil
}

// PutReportArtifact stores a rendered report in the given format.
func (s *ArtifactStore) PutReportArtifact(ctx context.Context, reportID, format string, content []byte) (*UploadResult, error) {
	if reportID == "" {
		return nil, ErrInvalidRequest
	}
	return s.repo.Upload(ctx, &UploadRequest{
		Bucket:      s.reports,
		ObjectKey:   reportKey(reportID, format),
		Data:        content,
		ContentType: reportContentType(format),
		Tags:        map[string]string{"format": format},
	})
}

// GetReportArtifact returns a rendered report.
func (s *ArtifactStore) GetReportArtifact(ctx context.Context, reportID, format string) ([]byte, error) {
	res, err := s.repo.Download(ctx, s.reports, reportKey(reportID, format))
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// PresignReportDownload returns a time-limited download URL for a
// rendered report.
func (s *ArtifactStore) PresignReportDownload(ctx context.Context, reportID, format string, expiry time.Duration) (string, error) {
	return s.repo.GetPresignedDownloadURL(ctx, s.reports, reportKey(reportID, format), expiry)
}

// DeleteReportArtifacts removes all rendered formats of a report.
func (s *ArtifactStore) DeleteReportArtifacts(ctx context.Context, reportID string) error {
	res, err := s.repo.List(ctx, s.reports, reportID+"/", nil)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(res.Objects))
	for _, obj := range res.Objects {
		keys = append(keys, obj.ObjectKey)
	}
	if len(keys) == 0 {
		return nil
	}
	_, err = s.repo.DeleteBatch(ctx, s.reports, keys)
	return err
}
