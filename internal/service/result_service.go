package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mbayefall/palmares-api/internal/models"
	appErrors "github.com/mbayefall/palmares-api/pkg/errors"
)

// filterOptionsCacheKey holds the cached browse-screen dropdown values; the
// import pipeline invalidates it whenever rows land.
const filterOptionsCacheKey = "results:filter_options"

type resultLister interface {
	List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, int, error)
	ListAll(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, error)
}

type classNameLister interface {
	ListNames(ctx context.Context) ([]string, error)
}

type sectionNameLister interface {
	ListNames(ctx context.Context) ([]string, error)
}

type schoolYearLabelLister interface {
	ListLabels(ctx context.Context) ([]string, error)
}

type optionsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ResultServiceConfig tunes pagination and caching.
type ResultServiceConfig struct {
	PageSize       int
	FilterCacheTTL time.Duration
}

// ResultService is the read-only query layer over consolidated results.
type ResultService struct {
	results  resultLister
	classes  classNameLister
	sections sectionNameLister
	years    schoolYearLabelLister
	cache    optionsCache
	logger   *zap.Logger
	cfg      ResultServiceConfig
}

// NewResultService constructs a ResultService.
func NewResultService(results resultLister, classes classNameLister, sections sectionNameLister, years schoolYearLabelLister, cache optionsCache, logger *zap.Logger, cfg ResultServiceConfig) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 25
	}
	if cfg.FilterCacheTTL <= 0 {
		cfg.FilterCacheTTL = 5 * time.Minute
	}
	return &ResultService{
		results:  results,
		classes:  classes,
		sections: sections,
		years:    years,
		cache:    cache,
		logger:   logger,
		cfg:      cfg,
	}
}

// List returns one page of results matching the filter.
func (s *ResultService) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, *models.Pagination, error) {
	if filter.PageSize <= 0 {
		filter.PageSize = s.cfg.PageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	details, total, err := s.results.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return details, pagination, nil
}

// FilterOptions returns the distinct dimension values for the browse-screen
// dropdowns, served from cache when warm. Cache failures are logged and
// degrade to a database read.
func (s *ResultService) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	var cached models.FilterOptions
	err := s.cache.Get(ctx, filterOptionsCacheKey, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("filter options cache read failed", zap.Error(err))
	}

	classes, err := s.classes.ListNames(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	sections, err := s.sections.ListNames(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	years, err := s.years.ListLabels(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list school years")
	}

	options := &models.FilterOptions{Classes: classes, Sections: sections, SchoolYears: years}
	if err := s.cache.Set(ctx, filterOptionsCacheKey, options, s.cfg.FilterCacheTTL); err != nil {
		s.logger.Warn("filter options cache write failed", zap.Error(err))
	}
	return options, nil
}
