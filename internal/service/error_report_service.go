package service

import (
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mbayefall/palmares-api/internal/dto"
	"github.com/mbayefall/palmares-api/pkg/export"
)

// errorReportHeaders is the exact artifact header contract; downstream
// tooling parses these column names.
var errorReportHeaders = []string{"Ligne", "Nom complet", "Pourcentage", "Classe", "Section", "Année scolaire", "Erreur"}

type artifactStore interface {
	Save(filename string, data []byte) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ErrorReportService persists the per-row errors of an import run as a CSV
// artifact, one row per failed input row in encounter order.
type ErrorReportService struct {
	store  artifactStore
	csv    csvRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewErrorReportService constructs an ErrorReportService.
func NewErrorReportService(store artifactStore, csv csvRenderer, logger *zap.Logger) *ErrorReportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorReportService{store: store, csv: csv, logger: logger, now: time.Now}
}

// Write renders the error list and stores it under a timestamp-qualified
// name, returning the stored filename. Callers must not invoke it with an
// empty list; an import without errors produces no artifact.
func (s *ErrorReportService) Write(rowErrors []dto.RowError) (string, error) {
	if len(rowErrors) == 0 {
		return "", fmt.Errorf("no errors to report")
	}

	rows := make([]map[string]string, 0, len(rowErrors))
	for _, rowErr := range rowErrors {
		rows = append(rows, map[string]string{
			"Ligne":          strconv.Itoa(rowErr.Line),
			"Nom complet":    cellAt(rowErr.Cells, colFullName),
			"Pourcentage":    cellAt(rowErr.Cells, colPercentage),
			"Classe":         cellAt(rowErr.Cells, colClass),
			"Section":        cellAt(rowErr.Cells, colSection),
			"Année scolaire": cellAt(rowErr.Cells, colSchoolYear),
			"Erreur":         rowErr.Reason,
		})
	}

	data, err := s.csv.Render(export.Dataset{Headers: errorReportHeaders, Rows: rows})
	if err != nil {
		return "", fmt.Errorf("render error report: %w", err)
	}

	filename := fmt.Sprintf("import_errors_%s.csv", s.now().Format("20060102_150405"))
	stored, err := s.store.Save(filename, data)
	if err != nil {
		return "", fmt.Errorf("persist error report: %w", err)
	}

	s.logger.Info("import error report written",
		zap.String("filename", stored),
		zap.Int("rows", len(rowErrors)),
	)
	return stored, nil
}
