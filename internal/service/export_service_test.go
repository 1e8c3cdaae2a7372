package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mbayefall/palmares-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestExportServiceGenerateCSV(t *testing.T) {
	lister := &mockResultLister{details: []models.ResultDetail{
		{StudentName: "Awa Diop", Percentage: floatPtr(85.5), ClassName: "6A", SectionName: "Science", SchoolYear: "2023-2024"},
		{StudentName: "Moussa Fall", ClassName: "6B", SectionName: "Lettres", SchoolYear: "2023-2024"},
	}}
	svc := NewExportService(lister, nil, nil, zap.NewNop(), "")

	file, err := svc.Generate(context.Background(), models.ResultFilter{Class: "6A"}, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "resultats_etudiants.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "6A", lister.lastFilter.Class)

	records, err := csv.NewReader(bytes.NewReader(file.Payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Nom Complet", "Pourcentage", "Classe", "Section", "Année Scolaire"}, records[0])
	assert.Equal(t, []string{"Awa Diop", "85.50%", "6A", "Science", "2023-2024"}, records[1])
	// a missing percentage renders as a dash, not as zero
	assert.Equal(t, []string{"Moussa Fall", "-", "6B", "Lettres", "2023-2024"}, records[2])
}

func TestExportServiceGeneratePDF(t *testing.T) {
	lister := &mockResultLister{details: []models.ResultDetail{
		{StudentName: "Awa Diop", Percentage: floatPtr(85.5), ClassName: "6A", SectionName: "Science", SchoolYear: "2023-2024"},
	}}
	svc := NewExportService(lister, nil, nil, zap.NewNop(), "Résultats des Étudiants")

	file, err := svc.Generate(context.Background(), models.ResultFilter{}, "")
	require.NoError(t, err)
	assert.Equal(t, "resultats_etudiants.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))
}

func TestExportServiceGenerateUnknownFormat(t *testing.T) {
	svc := NewExportService(&mockResultLister{}, nil, nil, zap.NewNop(), "")
	_, err := svc.Generate(context.Background(), models.ResultFilter{}, "xlsx")
	require.Error(t, err)
}
