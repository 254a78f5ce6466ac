package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/omomfi/district-reports-api/internal/catalog"
	"github.com/omomfi/district-reports-api/internal/dto"
	"github.com/omomfi/district-reports-api/internal/models"
	"github.com/omomfi/district-reports-api/internal/policy"
	appErrors "github.com/omomfi/district-reports-api/pkg/errors"
	"github.com/omomfi/district-reports-api/pkg/export"
)

// MergedCacheKey is the cache key for the merged dataset; the pattern covers
// it for invalidation.
const (
	MergedCacheKey        = "reports:merged"
	MergedCacheKeyPattern = "reports:merged*"
)

type mergeRepository interface {
	ListApproved(ctx context.Context) ([]models.ReportRecord, error)
}

type mergeCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// MergeService builds the organization-wide view: rows of every fully
// approved record concatenated per report type.
type MergeService struct {
	repo     mergeRepository
	cache    mergeCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewMergeService constructs a MergeService. cache may be nil.
func NewMergeService(repo mergeRepository, cache mergeCache, cacheTTL time.Duration, logger *zap.Logger) *MergeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MergeService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Merged returns approved rows grouped by report type. Only records whose
// reviewer axis is Approved contribute; the checker axis alone never does.
func (s *MergeService) Merged(ctx context.Context, actor policy.Actor) (dto.MergedReports, error) {
	if err := policy.CanViewMerged(actor); err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached dto.MergedReports
		if err := s.cache.Get(ctx, MergedCacheKey, &cached); err == nil {
			return cached, nil
		} else if !appErrors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("merged reports cache read failed", zap.Error(err))
		}
	}

	records, err := s.repo.ListApproved(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approved reports")
	}

	merged := dto.MergedReports{}
	for _, record := range records {
		rows, err := record.Rows()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode report rows")
		}
		merged[record.ReportType] = append(merged[record.ReportType], rows...)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, MergedCacheKey, merged, s.cacheTTL); err != nil {
			s.logger.Warn("merged reports cache write failed", zap.Error(err))
		}
	}
	return merged, nil
}

// TypedDataset pairs a report type with its merged rows, ready for export.
type TypedDataset struct {
	TypeID  string
	Label   string
	Dataset export.Dataset
}

// Datasets converts the merged map into export datasets in catalog order.
// Column headers start with the type's template columns, followed by any
// extra columns the workbooks carried.
func (s *MergeService) Datasets(merged dto.MergedReports) []TypedDataset {
	var out []TypedDataset
	for _, reportType := range catalog.Types() {
		rows, ok := merged[reportType.ID]
		if !ok || len(rows) == 0 {
			continue
		}
		leading, _ := catalog.RequiredColumns(reportType.ID)
		out = append(out, TypedDataset{
			TypeID: reportType.ID,
			Label:  reportType.Label,
			Dataset: export.Dataset{
				Headers: export.HeadersFromRows(leading, rows),
				Rows:    rows,
			},
		})
	}
	return out
}
