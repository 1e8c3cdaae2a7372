package service

import (
	"errors"
	"os"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/mbayefall/palmares-api/pkg/errors"
	"github.com/mbayefall/palmares-api/pkg/storage"
)

type logStore interface {
	List() ([]storage.FileInfo, error)
	Open(filename string) (*os.File, error)
}

// ImportLogService lists and serves previously written error artifacts.
type ImportLogService struct {
	store  logStore
	logger *zap.Logger
}

// NewImportLogService constructs an ImportLogService.
func NewImportLogService(store logStore, logger *zap.Logger) *ImportLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportLogService{store: store, logger: logger}
}

// List returns the stored error artifacts, newest first.
func (s *ImportLogService) List() ([]storage.FileInfo, error) {
	files, err := s.store.List()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list import logs")
	}
	logs := make([]storage.FileInfo, 0, len(files))
	for _, file := range files {
		if strings.HasSuffix(file.Name, ".csv") {
			logs = append(logs, file)
		}
	}
	return logs, nil
}

// Download opens one artifact by exact filename. Only .csv names are
// servable; the storage layer rejects names escaping the artifact root.
func (s *ImportLogService) Download(filename string) (*os.File, error) {
	if !strings.HasSuffix(filename, ".csv") {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "import log not found")
	}
	file, err := s.store.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrInvalidName) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "import log not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open import log")
	}
	return file, nil
}
