package dto

import "github.com/omomfi/district-reports-api/internal/models"

// UploadReportForm carries the multipart form fields accompanying the
// workbook file on upload.
type UploadReportForm struct {
	ReportType  string `form:"report_type" validate:"required"`
	ReportCode  string `form:"report_code" validate:"required"`
	Title       string `form:"title" validate:"required"`
	Description string `form:"description"`
	Category    string `form:"category" validate:"required"`
}

// UpdateReportRequest mutates title/description of an existing report.
type UpdateReportRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// StatusUpdateRequest may carry either approval axis or both; each axis is
// authorized independently and the call applies all-or-nothing.
type StatusUpdateRequest struct {
	CheckerStatus  *models.CheckerStatus  `json:"checker_status"`
	ReviewerStatus *models.ReviewerStatus `json:"reviewer_status"`
	Comment        string                 `json:"comment"`
}

// ReportDetail is the full view of one report: metadata plus the record's
// district, category, and decoded rows.
type ReportDetail struct {
	models.ReportMetadata
	District *string             `json:"district,omitempty"`
	Category string              `json:"category"`
	FileName string              `json:"file_name"`
	Rows     []map[string]string `json:"rows"`
}

// DownloadPayload returns the original workbook bytes with its filename.
type DownloadPayload struct {
	FileName string
	Content  []byte
}

// MergedReports maps a report type id to the concatenated rows of every
// fully approved record of that type.
type MergedReports map[string][]map[string]string
