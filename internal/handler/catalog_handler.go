package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omomfi/district-reports-api/internal/catalog"
	"github.com/omomfi/district-reports-api/pkg/response"
)

// CatalogHandler serves the static enum catalogs the frontend drives its
// forms from.
type CatalogHandler struct{}

// NewCatalogHandler creates a new handler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Enums godoc
// @Summary Report catalogs
// @Description Returns categories, report types, districts, the category mapping, and template columns
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /enums [get]
func (h *CatalogHandler) Enums(c *gin.Context) {
	response.JSON(c, http.StatusOK, catalog.Snapshot(), nil)
}
