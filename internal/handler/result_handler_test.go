package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbayefall/palmares-api/internal/models"
	"github.com/mbayefall/palmares-api/internal/service"
)

type resultServiceMock struct {
	details    []models.ResultDetail
	pagination *models.Pagination
	options    *models.FilterOptions
	lastFilter models.ResultFilter
}

func (m *resultServiceMock) List(ctx context.Context, filter models.ResultFilter) ([]models.ResultDetail, *models.Pagination, error) {
	m.lastFilter = filter
	return m.details, m.pagination, nil
}

func (m *resultServiceMock) FilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	return m.options, nil
}

type exportServiceMock struct {
	file       *service.ExportFile
	lastFormat string
	lastFilter models.ResultFilter
}

func (m *exportServiceMock) Generate(ctx context.Context, filter models.ResultFilter, format string) (*service.ExportFile, error) {
	m.lastFilter = filter
	m.lastFormat = format
	return m.file, nil
}

func newQueryContext(t *testing.T, path string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, path, nil)
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func TestResultHandlerListBindsFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resultServiceMock{
		details:    []models.ResultDetail{{ID: "result-1", StudentName: "Awa Diop"}},
		pagination: &models.Pagination{Page: 2, PageSize: 10, TotalCount: 31},
	}
	h := NewResultHandler(mockSvc, &exportServiceMock{})

	c, w := newQueryContext(t, "/results?q=diop&classe=6A&section=Science&annee=2023-2024&page=2&page_size=10")
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "diop", mockSvc.lastFilter.Search)
	assert.Equal(t, "6A", mockSvc.lastFilter.Class)
	assert.Equal(t, "Science", mockSvc.lastFilter.Section)
	assert.Equal(t, "2023-2024", mockSvc.lastFilter.SchoolYear)
	assert.Equal(t, 2, mockSvc.lastFilter.Page)

	var envelope struct {
		Data       []models.ResultDetail `json:"data"`
		Pagination *models.Pagination    `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 31, envelope.Pagination.TotalCount)
}

func TestResultHandlerFilterOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &resultServiceMock{options: &models.FilterOptions{Classes: []string{"6A"}, Sections: []string{"Science"}, SchoolYears: []string{"2023-2024"}}}
	h := NewResultHandler(mockSvc, &exportServiceMock{})

	c, w := newQueryContext(t, "/results/filters")
	h.FilterOptions(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.FilterOptions `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, []string{"6A"}, envelope.Data.Classes)
}

func TestResultHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockExport := &exportServiceMock{file: &service.ExportFile{
		Filename:    "resultats_etudiants.csv",
		ContentType: "text/csv",
		Payload:     []byte("Nom Complet\n"),
	}}
	h := NewResultHandler(&resultServiceMock{}, mockExport)

	c, w := newQueryContext(t, "/results/export?format=csv&classe=6A")
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockExport.lastFormat)
	assert.Equal(t, "6A", mockExport.lastFilter.Class)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="resultats_etudiants.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Nom Complet\n", w.Body.String())
}
