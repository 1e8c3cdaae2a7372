package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbayefall/palmares-api/internal/models"
	"github.com/mbayefall/palmares-api/internal/service"
	appErrors "github.com/mbayefall/palmares-api/pkg/errors"
	"github.com/mbayefall/palmares-api/pkg/response"
)

type resultService interface {
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, *models.Pagination, error)
	FilterOptions(ctx context.Context) (*models.FilterOptions, error)
}

type exportService interface {
	Generate(ctx context.Context, filter models.ResultFilter, format string) (*service.ExportFile, error)
}

// ResultHandler exposes the result browse and export endpoints.
type ResultHandler struct {
	results resultService
	exports exportService
}

// NewResultHandler constructs handler.
func NewResultHandler(results resultService, exports exportService) *ResultHandler {
	return &ResultHandler{results: results, exports: exports}
}

// List returns one page of results matching the query filters.
func (h *ResultHandler) List(c *gin.Context) {
	var filter models.ResultFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	details, pagination, err := h.results.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, pagination)
}

// FilterOptions returns the distinct dimension values for the filters.
func (h *ResultHandler) FilterOptions(c *gin.Context) {
	options, err := h.results.FilterOptions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}

// Export streams the filtered result set as a PDF or CSV download.
func (h *ResultHandler) Export(c *gin.Context) {
	var filter models.ResultFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	file, err := h.exports.Generate(c.Request.Context(), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Payload)
}
