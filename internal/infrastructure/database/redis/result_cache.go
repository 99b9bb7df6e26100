package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/turtacn/RegGap-Intelligence/internal/application/analysis"
	"github.com/turtacn/RegGap-Intelligence/internal/application/reporting"
)

const (
	analysisKeyPrefix = "analysis:"
	reportKeyPrefix   = "report:"

	defaultAnalysisTTL = time.Hour
	defaultReportTTL   = 24 * time.Hour
)

// ContentKey derives a stable cache key from a document's jurisdiction
// and normalized text, so re-analyzing identical content is a cache hit.
func ContentKey(jurisdiction, text string) string {
	h := sha256.New()
	h.Write([]byte(jurisdiction))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// ResultCache caches completed analyses and generated reports.
type ResultCache struct {
	cache       Cache
	analysisTTL time.Duration
	reportTTL   time.Duration
}

type ResultCacheOption func(*ResultCache)

func WithAnalysisTTL(ttl time.Duration) ResultCacheOption {
	return func(r *ResultCache) { r.analysisTTL = ttl }
}

func WithReportTTL(ttl time.Duration) ResultCacheOption {
	return func(r *ResultCache) { r.reportTTL = ttl }
}

// NewResultCache creates a ResultCache on top of cache.
func NewResultCache(cache Cache, opts ...ResultCacheOption) *ResultCache {
	r := &ResultCache{
		cache:       cache,
		analysisTTL: defaultAnalysisTTL,
		reportTTL:   defaultReportTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetAnalysis returns a cached analysis for the content key, or
// ErrCacheMiss.
func (r *ResultCache) GetAnalysis(ctx context.Context, contentKey string) (*analysis.DocumentAnalysis, error) {
	var doc analysis.DocumentAnalysis
	if err := r.cache.Get(ctx, analysisKeyPrefix+contentKey, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// PutAnalysis caches an analysis under the content key.
func (r *ResultCache) PutAnalysis(ctx context.Context, contentKey string, doc *analysis.DocumentAnalysis) error {
	return r.cache.Set(ctx, analysisKeyPrefix+contentKey, doc, r.analysisTTL)
}

// GetOrAnalyze returns the cached analysis or runs the loader and
// caches its result. Concurrent calls for the same key run the loader
// once.
func (r *ResultCache) GetOrAnalyze(ctx context.Context, contentKey string, loader func(ctx context.Context) (*analysis.DocumentAnalysis, error)) (*analysis.DocumentAnalysis, error) {
	var doc analysis.DocumentAnalysis
	err := r.cache.GetOrSet(ctx, analysisKeyPrefix+contentKey, &doc, r.analysisTTL, func(ctx context.Context) (interface{}, error) {
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetReport returns a cached report by ID, or ErrCacheMiss.
func (r *ResultCache) GetReport(ctx context.Context, reportID string) (*reporting.ComplianceReport, error) {
	var report reporting.ComplianceReport
	if err := r.cache.Get(ctx, reportKeyPrefix+reportID, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// PutReport caches a generated report by its ID.
func (r *ResultCache) PutReport(ctx context.Context, report *reporting.ComplianceReport) error {
	return r.cache.Set(ctx, reportKeyPrefix+report.ReportID, report, r.reportTTL)
}

// InvalidateReports drops all cached reports.
func (r *ResultCache) InvalidateReports(ctx context.Context) (int64, error) {
	return r.cache.DeleteByPrefix(ctx, reportKeyPrefix)
}
