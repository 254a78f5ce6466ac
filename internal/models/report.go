package models

import (
	"encoding/json"
	"time"
)

// CheckerStatus is the district-manager review axis.
type CheckerStatus string

const (
	CheckerPending  CheckerStatus = "Pending"
	CheckerChecked  CheckerStatus = "Checked"
	CheckerRejected CheckerStatus = "Rejected"
)

// Valid reports whether the value is part of the checker axis.
func (s CheckerStatus) Valid() bool {
	switch s {
	case CheckerPending, CheckerChecked, CheckerRejected:
		return true
	}
	return false
}

// ReviewerStatus is the main-office review axis.
type ReviewerStatus string

const (
	ReviewerPending  ReviewerStatus = "Pending"
	ReviewerApproved ReviewerStatus = "Approved"
	ReviewerRejected ReviewerStatus = "Rejected"
)

// Valid reports whether the value is part of the reviewer axis.
func (s ReviewerStatus) Valid() bool {
	switch s {
	case ReviewerPending, ReviewerApproved, ReviewerRejected:
		return true
	}
	return false
}

// ReportRecord is a report_data row: identity, derived district, the parsed
// rows serialized as JSON, and the original workbook bytes kept for exact
// download.
type ReportRecord struct {
	ID          string    `db:"id" json:"id"`
	ReportType  string    `db:"report_type" json:"report_type"`
	ReportCode  string    `db:"report_code" json:"report_code"`
	Category    string    `db:"category" json:"category"`
	District    *string   `db:"district" json:"district,omitempty"`
	DataJSON    []byte    `db:"data_json" json:"-"`
	FileName    string    `db:"file_name" json:"file_name"`
	FileContent []byte    `db:"file_content" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Rows decodes the stored payload into ordered row maps.
func (r *ReportRecord) Rows() ([]map[string]string, error) {
	if len(r.DataJSON) == 0 {
		return nil, nil
	}
	var rows []map[string]string
	if err := json.Unmarshal(r.DataJSON, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DistrictID returns the record's district or "" for main-office data.
func (r *ReportRecord) DistrictID() string {
	if r == nil || r.District == nil {
		return ""
	}
	return *r.District
}

// ReportMetadata is the report_metadata row, 1:1 with ReportRecord and
// carrying the two approval axes.
type ReportMetadata struct {
	ID              string         `db:"id" json:"id"`
	ReportDataID    string         `db:"report_data_id" json:"-"`
	ReportType      string         `db:"report_type" json:"report_type"`
	ReportCode      string         `db:"report_code" json:"report_code"`
	Title           string         `db:"title" json:"title"`
	Description     string         `db:"description" json:"description"`
	PreparedBy      string         `db:"prepared_by" json:"prepared_by"`
	CreatedDate     time.Time      `db:"created_date" json:"created_date"`
	CheckerStatus   CheckerStatus  `db:"checker_status" json:"checker_status"`
	ReviewerStatus  ReviewerStatus `db:"reviewer_status" json:"reviewer_status"`
	CheckerComment  *string        `db:"checker_comment" json:"checker_comment,omitempty"`
	ReviewerComment *string        `db:"reviewer_comment" json:"reviewer_comment,omitempty"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Finalized reports whether the record is protected from deletion: checked
// by the district manager or approved by the main office.
func (m *ReportMetadata) Finalized() bool {
	return m.CheckerStatus == CheckerChecked || m.ReviewerStatus == ReviewerApproved
}

// ReportListItem joins the metadata with the record's district for listing.
type ReportListItem struct {
	ReportMetadata
	District *string `db:"district" json:"district,omitempty"`
}
