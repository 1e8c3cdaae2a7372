package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mbayefall/palmares-api/internal/models"
	appErrors "github.com/mbayefall/palmares-api/pkg/errors"
	"github.com/mbayefall/palmares-api/pkg/export"
)

// Export formats supported by the results download endpoint.
const (
	ExportFormatPDF = "pdf"
	ExportFormatCSV = "csv"
)

var resultExportHeaders = []string{"Nom Complet", "Pourcentage", "Classe", "Section", "Année Scolaire"}

type exportCSVRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type exportPDFRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile bundles a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders the filtered result set as a downloadable file.
type ExportService struct {
	results resultLister
	csv     exportCSVRenderer
	pdf     exportPDFRenderer
	logger  *zap.Logger
	title   string
}

// NewExportService constructs an ExportService.
func NewExportService(results resultLister, csv exportCSVRenderer, pdf exportPDFRenderer, logger *zap.Logger, title string) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Résultats des Étudiants"
	}
	return &ExportService{results: results, csv: csv, pdf: pdf, logger: logger, title: title}
}

// Generate renders every result matching the filter in the requested format.
func (s *ExportService) Generate(ctx context.Context, filter models.ResultFilter, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatPDF
	}
	if format != ExportFormatPDF && format != ExportFormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	details, err := s.results.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load results for export")
	}

	dataset := export.Dataset{Headers: resultExportHeaders, Rows: make([]map[string]string, 0, len(details))}
	for _, detail := range details {
		percentage := "-"
		if detail.Percentage != nil {
			percentage = fmt.Sprintf("%.2f%%", *detail.Percentage)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Nom Complet":    detail.StudentName,
			"Pourcentage":    percentage,
			"Classe":         detail.ClassName,
			"Section":        detail.SectionName,
			"Année Scolaire": detail.SchoolYear,
		})
	}

	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportFile{Filename: "resultats_etudiants.csv", ContentType: "text/csv", Payload: payload}, nil
	default:
		payload, err := s.pdf.Render(dataset, s.title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportFile{Filename: "resultats_etudiants.pdf", ContentType: "application/pdf", Payload: payload}, nil
	}
}
