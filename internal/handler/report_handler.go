package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omomfi/district-reports-api/internal/dto"
	"github.com/omomfi/district-reports-api/internal/middleware"
	"github.com/omomfi/district-reports-api/internal/policy"
	"github.com/omomfi/district-reports-api/internal/service"
	appErrors "github.com/omomfi/district-reports-api/pkg/errors"
	"github.com/omomfi/district-reports-api/pkg/export"
	"github.com/omomfi/district-reports-api/pkg/response"
)

// ReportHandler wires HTTP endpoints to the report workflow.
type ReportHandler struct {
	reports     *service.ReportService
	merge       *service.MergeService
	metrics     *service.MetricsService
	csvExporter *export.CSVExporter
	pdfExporter *export.PDFExporter
	maxFileSize int64
}

// NewReportHandler creates a new handler. metrics may be nil.
func NewReportHandler(reports *service.ReportService, merge *service.MergeService, metrics *service.MetricsService, maxFileSize int64) *ReportHandler {
	return &ReportHandler{
		reports:     reports,
		merge:       merge,
		metrics:     metrics,
		csvExporter: export.NewCSVExporter(),
		pdfExporter: export.NewPDFExporter(),
		maxFileSize: maxFileSize,
	}
}

func (h *ReportHandler) actor(c *gin.Context) (policy.Actor, bool) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return policy.Actor{}, false
	}
	return policy.ActorFromClaims(claims), true
}

// Upload godoc
// @Summary Upload a report
// @Description Upload an xlsx workbook with its metadata fields
// @Tags Reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Report workbook (xlsx)"
// @Param report_type formData string true "Report type id"
// @Param report_code formData string true "Unique report code"
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param category formData string true "Category"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Upload(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var form dto.UploadReportForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid upload payload"))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "a report file is required"))
		return
	}
	defer file.Close() //nolint:errcheck

	if h.maxFileSize > 0 && header.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds the maximum allowed size of %d bytes", h.maxFileSize)))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read uploaded file"))
		return
	}

	metadata, err := h.reports.Upload(c.Request.Context(), actor, form, header.Filename, content)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.metrics.RecordUpload(metadata.ReportType)
	response.Created(c, metadata)
}

// List godoc
// @Summary List reports
// @Description District roles see their own district; main office sees all
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	items, err := h.reports.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get one report
// @Tags Reports
// @Produce json
// @Param code path string true "Report code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{code} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	detail, err := h.reports.Get(c.Request.Context(), actor, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Edit report title/description
// @Tags Reports
// @Accept json
// @Produce json
// @Param code path string true "Report code"
// @Param payload body dto.UpdateReportRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{code} [put]
func (h *ReportHandler) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}
	metadata, err := h.reports.Update(c.Request.Context(), actor, c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, metadata, nil)
}

// Delete godoc
// @Summary Delete a report
// @Description Preparers may delete their own non-finalized submissions
// @Tags Reports
// @Produce json
// @Param code path string true "Report code"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{code} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if err := h.reports.Delete(c.Request.Context(), actor, c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateStatus godoc
// @Summary Update approval status
// @Description Carries the checker axis, the reviewer axis, or both; rejecting requires a comment
// @Tags Reports
// @Accept json
// @Produce json
// @Param code path string true "Report code"
// @Param payload body dto.StatusUpdateRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{code}/status [patch]
// @Router /reports/{code}/status [post]
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	metadata, err := h.reports.UpdateStatus(c.Request.Context(), actor, c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.CheckerStatus != nil {
		h.metrics.RecordStatusChange("checker", string(*req.CheckerStatus))
	}
	if req.ReviewerStatus != nil {
		h.metrics.RecordStatusChange("reviewer", string(*req.ReviewerStatus))
	}
	response.JSON(c, http.StatusOK, metadata, nil)
}

// Download godoc
// @Summary Download the original workbook
// @Tags Reports
// @Produce application/octet-stream
// @Param code path string true "Report code"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{code}/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	payload, err := h.reports.Download(c.Request.Context(), actor, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.FileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", payload.Content)
}

// Merged godoc
// @Summary Merged approved reports
// @Description Approved rows grouped by report type; format json, csv, or pdf
// @Tags Reports
// @Produce json
// @Param format query string false "Output format" Enums(json, csv, pdf)
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /merged-reports [get]
func (h *ReportHandler) Merged(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	merged, err := h.merge.Merged(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		response.JSON(c, http.StatusOK, merged, nil)
	case "csv":
		h.renderMergedCSV(c, merged)
	case "pdf":
		h.renderMergedPDF(c, merged)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be one of json, csv, pdf"))
	}
}

// renderMergedCSV streams one CSV section per report type, separated by a
// blank line and headed by the type label.
func (h *ReportHandler) renderMergedCSV(c *gin.Context, merged dto.MergedReports) {
	var out []byte
	for i, ds := range h.merge.Datasets(merged) {
		body, err := h.csvExporter.Render(ds.Dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, []byte(ds.Label+"\n")...)
		out = append(out, body...)
	}
	c.Header("Content-Disposition", `attachment; filename="merged_reports.csv"`)
	c.Data(http.StatusOK, "text/csv", out)
}

func (h *ReportHandler) renderMergedPDF(c *gin.Context, merged dto.MergedReports) {
	datasets := h.merge.Datasets(merged)
	if len(datasets) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no approved reports to export"))
		return
	}
	title := "Merged Reports"
	dataset := datasets[0].Dataset
	if len(datasets) == 1 {
		title = datasets[0].Label
	} else {
		combined := export.Dataset{Headers: datasets[0].Dataset.Headers}
		for _, ds := range datasets {
			combined.Headers = export.HeadersFromRows(combined.Headers, ds.Dataset.Rows)
			combined.Rows = append(combined.Rows, ds.Dataset.Rows...)
		}
		dataset = combined
	}
	body, err := h.pdfExporter.Render(dataset, title)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="merged_reports.pdf"`)
	c.Data(http.StatusOK, "application/pdf", body)
}
