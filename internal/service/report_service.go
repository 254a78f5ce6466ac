package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/omomfi/district-reports-api/internal/catalog"
	"github.com/omomfi/district-reports-api/internal/dto"
	"github.com/omomfi/district-reports-api/internal/models"
	"github.com/omomfi/district-reports-api/internal/policy"
	"github.com/omomfi/district-reports-api/internal/repository"
	appErrors "github.com/omomfi/district-reports-api/pkg/errors"
	"github.com/omomfi/district-reports-api/pkg/tabular"
)

type reportRepository interface {
	Create(ctx context.Context, record *models.ReportRecord, metadata *models.ReportMetadata) error
	GetRecord(ctx context.Context, code string) (*models.ReportRecord, error)
	GetMetadata(ctx context.Context, code string) (*models.ReportMetadata, error)
	List(ctx context.Context, district string, all bool) ([]models.ReportListItem, error)
	UpdateMetadata(ctx context.Context, code string, title, description *string) error
	UpdateStatus(ctx context.Context, params repository.UpdateStatusParams) error
	Delete(ctx context.Context, code string) error
}

type preparerDirectory interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type mergeCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ReportService implements the submission workflow: upload, edit, delete,
// listing, download, and the two-axis status machine.
type ReportService struct {
	repo      reportRepository
	users     preparerDirectory
	cache     mergeCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs a ReportService. cache may be nil when merge
// caching is disabled.
func NewReportService(repo reportRepository, users preparerDirectory, cache mergeCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReportService{repo: repo, users: users, cache: cache, validator: validate, logger: logger}
}

// Upload validates and stores a new report submission. The pipeline checks
// role, report type, category match, template columns, and district
// ownership before anything is written; a valid submission lands with both
// axes Pending.
func (s *ReportService) Upload(ctx context.Context, actor policy.Actor, form dto.UploadReportForm, fileName string, content []byte) (*models.ReportMetadata, error) {
	if err := policy.CanUpload(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload payload")
	}

	reportType, ok := catalog.TypeByID(form.ReportType)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report type: %s", form.ReportType))
	}
	if !catalog.ValidCategory(catalog.Category(form.Category)) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category: %s", form.Category))
	}
	if string(reportType.Category) != form.Category {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("report type %s belongs to category %s, not %s", reportType.ID, reportType.Category, form.Category))
	}

	table, err := tabular.Parse(bytes.NewReader(content))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not read the uploaded workbook")
	}

	required, _ := catalog.RequiredColumns(reportType.ID)
	if missing := table.MissingColumns(required); len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf(
			"workbook does not match the %s template: missing columns [%s], expected [%s], found [%s]",
			reportType.Label,
			strings.Join(missing, ", "),
			strings.Join(required, ", "),
			strings.Join(table.Columns, ", "),
		))
	}

	district, err := s.resolveDistrict(actor, table)
	if err != nil {
		return nil, err
	}

	dataJSON, err := json.Marshal(table.Rows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode report rows")
	}

	record := &models.ReportRecord{
		ReportType:  reportType.ID,
		ReportCode:  form.ReportCode,
		Category:    form.Category,
		District:    district,
		DataJSON:    dataJSON,
		FileName:    fileName,
		FileContent: content,
	}
	metadata := &models.ReportMetadata{
		Title:          form.Title,
		Description:    form.Description,
		PreparedBy:     actor.Username,
		CheckerStatus:  models.CheckerPending,
		ReviewerStatus: models.ReviewerPending,
	}

	if err := s.repo.Create(ctx, record, metadata); err != nil {
		if errors.Is(err, repository.ErrDuplicateCode) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("report code already exists: %s", form.ReportCode))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	s.logger.Info("report uploaded",
		zap.String("report_code", record.ReportCode),
		zap.String("report_type", record.ReportType),
		zap.String("prepared_by", actor.Username),
	)
	return metadata, nil
}

// resolveDistrict derives the record's district from the workbook's District
// column. Every value must name one known district; district-scoped actors
// may only submit data for their own.
func (s *ReportService) resolveDistrict(actor policy.Actor, table *tabular.Table) (*string, error) {
	values := table.Values(catalog.ColumnDistrict)

	var resolved *catalog.District
	for _, value := range values {
		d, ok := catalog.NormalizeDistrict(value)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown district in workbook: %s", value))
		}
		if resolved != nil && resolved.ID != d.ID {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("workbook mixes districts: %s and %s", resolved.ID, d.ID))
		}
		district := d
		resolved = &district
	}

	if actor.Role.DistrictScoped() {
		if resolved != nil && resolved.ID != actor.District {
			return nil, appErrors.Clone(appErrors.ErrWrongDistrict,
				fmt.Sprintf("workbook contains data for %s but you belong to %s", resolved.ID, actor.District))
		}
		district := actor.District
		return &district, nil
	}
	if resolved != nil {
		return &resolved.ID, nil
	}
	return nil, nil
}

// Get returns the metadata of one report, scoped to the actor's district.
func (s *ReportService) Get(ctx context.Context, actor policy.Actor, code string) (*dto.ReportDetail, error) {
	record, metadata, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if _, all := policy.ListScope(actor); !all && record.DistrictID() != actor.District {
		return nil, appErrors.Clone(appErrors.ErrWrongDistrict, "report belongs to another district")
	}
	rows, err := record.Rows()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode report rows")
	}
	return &dto.ReportDetail{
		ReportMetadata: *metadata,
		District:       record.District,
		Category:       record.Category,
		FileName:       record.FileName,
		Rows:           rows,
	}, nil
}

// List returns reports visible to the actor: district roles see their own
// district, the main office sees everything.
func (s *ReportService) List(ctx context.Context, actor policy.Actor) ([]models.ReportListItem, error) {
	district, all := policy.ListScope(actor)
	items, err := s.repo.List(ctx, district, all)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	return items, nil
}

// Update changes title/description. Only the original preparer may edit.
func (s *ReportService) Update(ctx context.Context, actor policy.Actor, code string, req dto.UpdateReportRequest) (*models.ReportMetadata, error) {
	metadata, err := s.loadMetadata(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := policy.CanEdit(actor, metadata.PreparedBy); err != nil {
		return nil, err
	}
	if req.Title == nil && req.Description == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update")
	}
	if err := s.repo.UpdateMetadata(ctx, code, req.Title, req.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("report not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report")
	}
	return s.loadMetadata(ctx, code)
}

// Delete removes a report. The preparer may delete their own submissions
// until either axis finalizes the record.
func (s *ReportService) Delete(ctx context.Context, actor policy.Actor, code string) error {
	metadata, err := s.loadMetadata(ctx, code)
	if err != nil {
		return err
	}
	if err := policy.CanDelete(actor, metadata.PreparedBy, metadata.Finalized()); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, code); err != nil {
		// The row existed a moment ago, so zero rows means a concurrent
		// status change finalized it.
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrFinalized
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete report")
	}
	s.logger.Info("report deleted", zap.String("report_code", code), zap.String("deleted_by", actor.Username))
	return nil
}

// UpdateStatus applies one review call carrying either approval axis or
// both. Each axis is authorized independently and every check runs before
// any write, so a call either applies completely or not at all. A Rejected
// axis requires a comment; a non-rejected axis clears its stored comment.
func (s *ReportService) UpdateStatus(ctx context.Context, actor policy.Actor, code string, req dto.StatusUpdateRequest) (*models.ReportMetadata, error) {
	if req.CheckerStatus == nil && req.ReviewerStatus == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one of checker_status or reviewer_status is required")
	}

	metadata, err := s.loadMetadata(ctx, code)
	if err != nil {
		return nil, err
	}

	params := repository.UpdateStatusParams{Code: code}
	comment := strings.TrimSpace(req.Comment)

	if req.CheckerStatus != nil {
		if !req.CheckerStatus.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid checker status: %s", *req.CheckerStatus))
		}
		preparerDistrict, err := s.preparerDistrict(ctx, metadata.PreparedBy)
		if err != nil {
			return nil, err
		}
		if err := policy.CanSetCheckerStatus(actor, preparerDistrict); err != nil {
			return nil, err
		}
		if *req.CheckerStatus == models.CheckerRejected {
			if comment == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation, "a comment is required when rejecting a report")
			}
			params.CheckerComment = &comment
		}
		params.CheckerStatus = req.CheckerStatus
	}

	if req.ReviewerStatus != nil {
		if !req.ReviewerStatus.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid reviewer status: %s", *req.ReviewerStatus))
		}
		if err := policy.CanSetReviewerStatus(actor); err != nil {
			return nil, err
		}
		if *req.ReviewerStatus == models.ReviewerRejected {
			if comment == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation, "a comment is required when rejecting a report")
			}
			params.ReviewerComment = &comment
		}
		params.ReviewerStatus = req.ReviewerStatus
	}

	if err := s.repo.UpdateStatus(ctx, params); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("report not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update report status")
	}

	// Any reviewer-axis change can alter the merged dataset.
	if req.ReviewerStatus != nil && s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, MergedCacheKeyPattern); err != nil {
			s.logger.Warn("failed to invalidate merged reports cache", zap.Error(err))
		}
	}

	s.logger.Info("report status updated",
		zap.String("report_code", code),
		zap.String("updated_by", actor.Username),
	)
	return s.loadMetadata(ctx, code)
}

// Download returns the original workbook bytes, scoped to the actor's
// district.
func (s *ReportService) Download(ctx context.Context, actor policy.Actor, code string) (*dto.DownloadPayload, error) {
	record, err := s.repo.GetRecord(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("report not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	if err := policy.CanDownload(actor, record.DistrictID()); err != nil {
		return nil, err
	}
	return &dto.DownloadPayload{FileName: record.FileName, Content: record.FileContent}, nil
}

func (s *ReportService) load(ctx context.Context, code string) (*models.ReportRecord, *models.ReportMetadata, error) {
	metadata, err := s.loadMetadata(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	record, err := s.repo.GetRecord(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("report not found: %s", code))
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return record, metadata, nil
}

func (s *ReportService) loadMetadata(ctx context.Context, code string) (*models.ReportMetadata, error) {
	metadata, err := s.repo.GetMetadata(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("report not found: %s", code))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return metadata, nil
}

// preparerDistrict resolves the district of the user who prepared a report.
// Checker authorization compares districts of people, not of data, so a
// missing preparer account denies the operation.
func (s *ReportService) preparerDistrict(ctx context.Context, preparedBy string) (string, error) {
	user, err := s.users.FindByUsername(ctx, preparedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrWrongDistrict, "the preparer of this report no longer exists")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve preparer")
	}
	return user.DistrictID(), nil
}
