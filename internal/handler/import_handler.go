package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbayefall/palmares-api/internal/dto"
	"github.com/mbayefall/palmares-api/internal/middleware"
	appErrors "github.com/mbayefall/palmares-api/pkg/errors"
	"github.com/mbayefall/palmares-api/pkg/response"
)

type importService interface {
	ImportFile(ctx context.Context, filename string, content io.Reader) (*dto.ImportSummary, error)
}

// ImportHandler exposes the spreadsheet import endpoint.
type ImportHandler struct {
	imports     importService
	maxFileSize int64
}

// NewImportHandler constructs handler.
func NewImportHandler(imports importService, maxFileSize int64) *ImportHandler {
	if maxFileSize <= 0 {
		maxFileSize = 10 * 1024 * 1024
	}
	return &ImportHandler{imports: imports, maxFileSize: maxFileSize}
}

// Upload accepts a multipart "file" field carrying an Excel workbook and
// returns the import summary.
func (h *ImportHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if fileHeader.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", h.maxFileSize)))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	summary, err := h.imports.ImportFile(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	var meta map[string]interface{}
	if user := middleware.CurrentUser(c); user != nil {
		meta = map[string]interface{}{"imported_by": user.Email}
	}
	response.JSON(c, http.StatusOK, summary, nil, meta)
}
