package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	appErrors "github.com/mbayefall/palmares-api/pkg/errors"
	"github.com/mbayefall/palmares-api/pkg/response"
	"github.com/mbayefall/palmares-api/pkg/storage"
)

type importLogService interface {
	List() ([]storage.FileInfo, error)
	Download(filename string) (*os.File, error)
}

// ImportLogHandler exposes error artifact listing and download.
type ImportLogHandler struct {
	logs importLogService
}

// NewImportLogHandler constructs handler.
func NewImportLogHandler(logs importLogService) *ImportLogHandler {
	return &ImportLogHandler{logs: logs}
}

// List returns the stored import error logs, newest first.
func (h *ImportLogHandler) List(c *gin.Context) {
	files, err := h.logs.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// Download streams one import error log by exact filename.
func (h *ImportLogHandler) Download(c *gin.Context) {
	filename := c.Param("filename")
	file, err := h.logs.Download(filename)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat import log"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "text/csv", file, nil)
}
