package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/omomfi/district-reports-api/internal/models"
)

// ErrDuplicateCode signals a report_code uniqueness violation. The unique
// constraint on report_data.report_code is the authoritative guard; the
// check-then-insert race cannot produce two records with the same code.
var ErrDuplicateCode = errors.New("report code already exists")

const pqUniqueViolation = "23505"

// ReportRepository persists the report_data/report_metadata pair. Every
// operation is atomic over the pair.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const recordColumns = `id, report_type, report_code, category, district, data_json, file_name, file_content, created_at`

const metadataColumns = `id, report_data_id, report_type, report_code, title, description, prepared_by, created_date,
       checker_status, reviewer_status, checker_comment, reviewer_comment, updated_at`

// Create inserts record and metadata in one transaction. A duplicate
// report code surfaces as ErrDuplicateCode.
func (r *ReportRepository) Create(ctx context.Context, record *models.ReportRecord, metadata *models.ReportMetadata) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if metadata.ID == "" {
		metadata.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if metadata.CreatedDate.IsZero() {
		metadata.CreatedDate = now
	}
	metadata.UpdatedAt = now
	metadata.ReportDataID = record.ID
	metadata.ReportType = record.ReportType
	metadata.ReportCode = record.ReportCode

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create report tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertRecord = `INSERT INTO report_data (id, report_type, report_code, category, district, data_json, file_name, file_content, created_at)
		VALUES (:id, :report_type, :report_code, :category, :district, :data_json, :file_name, :file_content, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertRecord, record); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return ErrDuplicateCode
		}
		return fmt.Errorf("insert report data: %w", err)
	}

	const insertMetadata = `INSERT INTO report_metadata (id, report_data_id, report_type, report_code, title, description, prepared_by, created_date, checker_status, reviewer_status, checker_comment, reviewer_comment, updated_at)
		VALUES (:id, :report_data_id, :report_type, :report_code, :title, :description, :prepared_by, :created_date, :checker_status, :reviewer_status, :checker_comment, :reviewer_comment, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertMetadata, metadata); err != nil {
		return fmt.Errorf("insert report metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create report tx: %w", err)
	}
	return nil
}

// GetRecord returns a report_data row by code.
func (r *ReportRepository) GetRecord(ctx context.Context, code string) (*models.ReportRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM report_data WHERE report_code = $1 LIMIT 1`, recordColumns)
	var record models.ReportRecord
	if err := r.db.GetContext(ctx, &record, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get report data: %w", err)
	}
	return &record, nil
}

// GetMetadata returns a report_metadata row by code.
func (r *ReportRepository) GetMetadata(ctx context.Context, code string) (*models.ReportMetadata, error) {
	query := fmt.Sprintf(`SELECT %s FROM report_metadata WHERE report_code = $1 LIMIT 1`, metadataColumns)
	var metadata models.ReportMetadata
	if err := r.db.GetContext(ctx, &metadata, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get report metadata: %w", err)
	}
	return &metadata, nil
}

// List returns metadata joined with the record district, optionally
// filtered to one district, newest first.
func (r *ReportRepository) List(ctx context.Context, district string, all bool) ([]models.ReportListItem, error) {
	query := `SELECT m.id, m.report_data_id, m.report_type, m.report_code, m.title, m.description, m.prepared_by, m.created_date,
       m.checker_status, m.reviewer_status, m.checker_comment, m.reviewer_comment, m.updated_at, d.district
		FROM report_metadata m
		JOIN report_data d ON d.id = m.report_data_id`
	var args []interface{}
	if !all {
		query += ` WHERE d.district = $1`
		args = append(args, district)
	}
	query += ` ORDER BY m.created_date DESC, m.report_code`

	var items []models.ReportListItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return items, nil
}

// UpdateMetadata writes title/description; nil fields are left untouched.
func (r *ReportRepository) UpdateMetadata(ctx context.Context, code string, title, description *string) error {
	setParts := []string{"updated_at = :updated_at"}
	if title != nil {
		setParts = append(setParts, "title = :title")
	}
	if description != nil {
		setParts = append(setParts, "description = :description")
	}
	query := fmt.Sprintf("UPDATE report_metadata SET %s WHERE report_code = :report_code", strings.Join(setParts, ", "))
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"report_code": code,
		"title":       title,
		"description": description,
		"updated_at":  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("update report metadata: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check metadata update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatusParams groups the status axes written by one review call.
// A nil axis is left untouched; when an axis is set its comment column is
// always written (cleared to NULL unless the axis is Rejected).
type UpdateStatusParams struct {
	Code            string
	CheckerStatus   *models.CheckerStatus
	CheckerComment  *string
	ReviewerStatus  *models.ReviewerStatus
	ReviewerComment *string
}

// UpdateStatus writes both axes in a single UPDATE so a call carrying both
// commits all-or-nothing.
func (r *ReportRepository) UpdateStatus(ctx context.Context, params UpdateStatusParams) error {
	setParts := []string{"updated_at = :updated_at"}
	if params.CheckerStatus != nil {
		setParts = append(setParts, "checker_status = :checker_status", "checker_comment = :checker_comment")
	}
	if params.ReviewerStatus != nil {
		setParts = append(setParts, "reviewer_status = :reviewer_status", "reviewer_comment = :reviewer_comment")
	}
	query := fmt.Sprintf("UPDATE report_metadata SET %s WHERE report_code = :report_code", strings.Join(setParts, ", "))
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"report_code":      params.Code,
		"checker_status":   params.CheckerStatus,
		"checker_comment":  params.CheckerComment,
		"reviewer_status":  params.ReviewerStatus,
		"reviewer_comment": params.ReviewerComment,
		"updated_at":       time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check status update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes metadata and record together. The finalized predicate is
// enforced in SQL so a concurrent status change cannot slip a delete
// through after the service-level check.
func (r *ReportRepository) Delete(ctx context.Context, code string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete report tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const deleteMetadata = `DELETE FROM report_metadata
		WHERE report_code = $1 AND checker_status <> $2 AND reviewer_status <> $3`
	result, err := tx.ExecContext(ctx, deleteMetadata, code, models.CheckerChecked, models.ReviewerApproved)
	if err != nil {
		return fmt.Errorf("delete report metadata: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check metadata delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	const deleteRecord = `DELETE FROM report_data WHERE report_code = $1`
	if _, err := tx.ExecContext(ctx, deleteRecord, code); err != nil {
		return fmt.Errorf("delete report data: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete report tx: %w", err)
	}
	return nil
}

// ListApproved returns every record whose reviewer status is Approved, in
// creation order. This is the merge engine's only input.
func (r *ReportRepository) ListApproved(ctx context.Context) ([]models.ReportRecord, error) {
	const query = `SELECT d.id, d.report_type, d.report_code, d.category, d.district, d.data_json, d.file_name, d.file_content, d.created_at
		FROM report_data d
		JOIN report_metadata m ON m.report_data_id = d.id
		WHERE m.reviewer_status = $1
		ORDER BY d.created_at, d.report_code`
	var records []models.ReportRecord
	if err := r.db.SelectContext(ctx, &records, query, models.ReviewerApproved); err != nil {
		return nil, fmt.Errorf("list approved reports: %w", err)
	}
	return records, nil
}
