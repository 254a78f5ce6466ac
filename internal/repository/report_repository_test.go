package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/omomfi/district-reports-api/internal/models"
)

func newReportRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func strPtr(s string) *string { return &s }

func TestReportRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_data")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_metadata")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	record := &models.ReportRecord{
		ReportType: "balance_sheet_nbe",
		ReportCode: "BS-2026-07",
		Category:   "finance",
		District:   strPtr("district1"),
		DataJSON:   []byte(`[{"District":"district1"}]`),
		FileName:   "bs.xlsx",
	}
	metadata := &models.ReportMetadata{
		Title:          "Balance Sheet July",
		PreparedBy:     "district1_user",
		CheckerStatus:  models.CheckerPending,
		ReviewerStatus: models.ReviewerPending,
	}
	require.NoError(t, repo.Create(context.Background(), record, metadata))
	require.NotEmpty(t, record.ID)
	require.Equal(t, record.ID, metadata.ReportDataID)
	require.Equal(t, record.ReportCode, metadata.ReportCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryCreateDuplicateCode(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_data")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "report_data_report_code_key"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.ReportRecord{ReportCode: "BS-2026-07"}, &models.ReportMetadata{})
	require.ErrorIs(t, err, ErrDuplicateCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryGetMetadata(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	rows := sqlmock.NewRows([]string{"id", "report_data_id", "report_type", "report_code", "title", "description", "prepared_by", "created_date", "checker_status", "reviewer_status", "checker_comment", "reviewer_comment", "updated_at"}).
		AddRow("meta-1", "data-1", "trial_balance", "TB-01", "Trial Balance", "", "district1_user", time.Now(), "Pending", "Pending", nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, report_data_id, report_type, report_code")).
		WithArgs("TB-01").
		WillReturnRows(rows)

	found, err := repo.GetMetadata(context.Background(), "TB-01")
	require.NoError(t, err)
	require.Equal(t, "meta-1", found.ID)
	require.Equal(t, models.CheckerPending, found.CheckerStatus)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, report_data_id, report_type, report_code")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	_, err = repo.GetMetadata(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListScoped(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	columns := []string{"id", "report_data_id", "report_type", "report_code", "title", "description", "prepared_by", "created_date", "checker_status", "reviewer_status", "checker_comment", "reviewer_comment", "updated_at", "district"}

	mock.ExpectQuery(regexp.QuoteMeta("JOIN report_data d ON d.id = m.report_data_id WHERE d.district =")).
		WithArgs("district1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("meta-1", "data-1", "trial_balance", "TB-01", "t", "", "district1_user", time.Now(), "Pending", "Pending", nil, nil, time.Now(), "district1"))

	items, err := repo.List(context.Background(), "district1", false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "district1", *items[0].District)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN report_data d ON d.id = m.report_data_id ORDER BY")).
		WillReturnRows(sqlmock.NewRows(columns))
	_, err = repo.List(context.Background(), "", true)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	checked := models.CheckerChecked
	approved := models.ReviewerApproved

	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_metadata SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	err := repo.UpdateStatus(context.Background(), UpdateStatusParams{
		Code:            "TB-01",
		CheckerStatus:   &checked,
		ReviewerStatus:  &approved,
		ReviewerComment: nil,
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_metadata SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateStatus(context.Background(), UpdateStatusParams{Code: "missing", CheckerStatus: &checked})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_metadata")).
		WithArgs("TB-01", string(models.CheckerChecked), string(models.ReviewerApproved)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_data")).
		WithArgs("TB-01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, repo.Delete(context.Background(), "TB-01"))

	// A finalized row is excluded by the predicate, so zero rows come back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM report_metadata")).
		WithArgs("TB-02", string(models.CheckerChecked), string(models.ReviewerApproved)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	err := repo.Delete(context.Background(), "TB-02")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListApproved(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	rows := sqlmock.NewRows([]string{"id", "report_type", "report_code", "category", "district", "data_json", "file_name", "file_content", "created_at"}).
		AddRow("data-1", "trial_balance", "TB-01", "finance", "district1", []byte(`[{"District":"district1"}]`), "tb.xlsx", []byte{1}, time.Now()).
		AddRow("data-2", "trial_balance", "TB-02", "finance", "district2", []byte(`[{"District":"district2"}]`), "tb2.xlsx", []byte{2}, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.reviewer_status =")).
		WithArgs(string(models.ReviewerApproved)).
		WillReturnRows(rows)

	records, err := repo.ListApproved(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "TB-01", records[0].ReportCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
