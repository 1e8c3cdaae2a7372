package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mbayefall/palmares-api/internal/dto"
	"github.com/mbayefall/palmares-api/internal/models"
	appErrors "github.com/mbayefall/palmares-api/pkg/errors"
)

// maxSummaryErrors bounds how many error reasons the caller sees inline;
// the full list always lands in the CSV artifact.
const maxSummaryErrors = 3

type schoolYearResolver interface {
	ResolveOrCreate(ctx context.Context, label string) (*models.SchoolYear, bool, error)
}

type classResolver interface {
	ResolveOrCreate(ctx context.Context, name string) (*models.Class, bool, error)
}

type sectionResolver interface {
	ResolveOrCreate(ctx context.Context, name string) (*models.Section, bool, error)
}

type studentResolver interface {
	ResolveOrCreate(ctx context.Context, fullName string) (*models.Student, bool, error)
}

type resultUpserter interface {
	Upsert(ctx context.Context, result *models.Result) (bool, error)
}

type errorReportWriter interface {
	Write(rowErrors []dto.RowError) (string, error)
}

type cacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

type importMetrics interface {
	ObserveImport(imported, updated, failed int)
}

// ImportServiceConfig tunes file staging.
type ImportServiceConfig struct {
	TempDir string
}

// ImportService drives a spreadsheet import end to end: it stages the
// uploaded bytes, parses the workbook, reconciles every row against the
// relational schema and persists the error report when needed.
type ImportService struct {
	years    schoolYearResolver
	classes  classResolver
	sections sectionResolver
	students studentResolver
	results  resultUpserter
	reports  errorReportWriter
	cache    cacheInvalidator
	metrics  importMetrics
	logger   *zap.Logger
	cfg      ImportServiceConfig
}

// NewImportService constructs an ImportService.
func NewImportService(
	years schoolYearResolver,
	classes classResolver,
	sections sectionResolver,
	students studentResolver,
	results resultUpserter,
	reports errorReportWriter,
	cache cacheInvalidator,
	metrics importMetrics,
	logger *zap.Logger,
	cfg ImportServiceConfig,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		years:    years,
		classes:  classes,
		sections: sections,
		students: students,
		results:  results,
		reports:  reports,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// ImportFile runs one import session: extension check before staging, bytes
// staged to a temp file that is removed on every exit path, workbook parsed,
// rows reconciled, error artifact written, bounded summary returned.
func (s *ImportService) ImportFile(ctx context.Context, filename string, content io.Reader) (*dto.ImportSummary, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".xlsx" && ext != ".xls" {
		return nil, appErrors.Clone(appErrors.ErrInvalidFileType, "")
	}

	staged, err := s.stage(content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stage upload")
	}
	defer func() {
		if err := os.Remove(staged); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove staged import file", zap.String("path", staged), zap.Error(err))
		}
	}()

	rows, err := readWorkbookRows(staged)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnreadableWorkbook.Code, appErrors.ErrUnreadableWorkbook.Status, appErrors.ErrUnreadableWorkbook.Message)
	}

	outcome := s.Reconcile(ctx, rows)
	s.metrics.ObserveImport(outcome.Imported, outcome.Updated, len(outcome.Errors))

	summary := summarize(outcome)
	if len(outcome.Errors) > 0 {
		logName, err := s.reports.Write(outcome.Errors)
		if err != nil {
			// The outcome is still valid without the artifact; report what
			// happened and leave the log reference empty.
			s.logger.Error("failed to write import error report", zap.Error(err))
		} else {
			summary.ErrorLog = logName
		}
	}

	if outcome.Imported > 0 || outcome.Updated > 0 {
		if err := s.cache.Delete(ctx, filterOptionsCacheKey); err != nil {
			s.logger.Warn("failed to invalidate filter options cache", zap.Error(err))
		}
	}

	s.logger.Info("import completed",
		zap.String("filename", filename),
		zap.Int("imported", outcome.Imported),
		zap.Int("updated", outcome.Updated),
		zap.Int("errors", len(outcome.Errors)),
	)
	return summary, nil
}

// Reconcile consumes the raw rows in file order and returns the immutable
// import outcome. Row failures of any kind are recorded and never abort the
// remaining rows.
func (s *ImportService) Reconcile(ctx context.Context, rows []dto.RawRow) dto.ImportOutcome {
	outcome := dto.ImportOutcome{}

	for _, raw := range rows {
		normalized, reason, skip := validateRow(raw.Cells)
		if skip {
			continue
		}
		if reason != "" {
			outcome.Errors = append(outcome.Errors, dto.RowError{Line: raw.Line, Cells: raw.Cells, Reason: reason})
			continue
		}

		created, err := s.reconcileRow(ctx, normalized)
		if err != nil {
			outcome.Errors = append(outcome.Errors, dto.RowError{
				Line:   raw.Line,
				Cells:  raw.Cells,
				Reason: fmt.Sprintf("unexpected error processing row: %v", err),
			})
			continue
		}
		if created {
			outcome.Imported++
		} else {
			outcome.Updated++
		}
	}

	return outcome
}

// reconcileRow resolves the four reference dimensions and upserts the fact.
func (s *ImportService) reconcileRow(ctx context.Context, row *NormalizedRow) (bool, error) {
	year, _, err := s.years.ResolveOrCreate(ctx, row.SchoolYear)
	if err != nil {
		return false, err
	}
	class, _, err := s.classes.ResolveOrCreate(ctx, row.ClassName)
	if err != nil {
		return false, err
	}
	section, _, err := s.sections.ResolveOrCreate(ctx, row.SectionName)
	if err != nil {
		return false, err
	}
	student, _, err := s.students.ResolveOrCreate(ctx, row.FullName)
	if err != nil {
		return false, err
	}

	result := &models.Result{
		StudentID:    student.ID,
		SchoolYearID: year.ID,
		ClassID:      class.ID,
		SectionID:    section.ID,
		Percentage:   row.Percentage,
	}
	return s.results.Upsert(ctx, result)
}

// stage copies the upload into an exclusively owned temp file and returns
// its path. Callers own removal.
func (s *ImportService) stage(content io.Reader) (string, error) {
	tmp, err := os.CreateTemp(s.cfg.TempDir, "palmares-import-*.xlsx")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close staging file: %w", err)
	}
	return tmp.Name(), nil
}

// readWorkbookRows loads the first sheet of the staged workbook, drops the
// header row and numbers the rest to match the original file (1-indexed,
// header included).
func readWorkbookRows(path string) ([]dto.RawRow, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close() //nolint:errcheck

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	cells, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}

	rows := make([]dto.RawRow, 0, len(cells))
	for i, rowCells := range cells {
		if i == 0 {
			continue
		}
		rows = append(rows, dto.RawRow{Line: i + 1, Cells: rowCells})
	}
	return rows, nil
}

// summarize bounds the outcome for the caller: at most the first three
// error reasons inline, the rest as a count.
func summarize(outcome dto.ImportOutcome) *dto.ImportSummary {
	summary := &dto.ImportSummary{Imported: outcome.Imported, Updated: outcome.Updated}
	for i, rowErr := range outcome.Errors {
		if i == maxSummaryErrors {
			summary.RemainingErrors = len(outcome.Errors) - maxSummaryErrors
			break
		}
		summary.Errors = append(summary.Errors, fmt.Sprintf("Ligne %d: %s", rowErr.Line, rowErr.Reason))
	}
	return summary
}
