package service

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/mbayefall/palmares-api/pkg/errors"
	"github.com/mbayefall/palmares-api/pkg/storage"
)

func newLogFixture(t *testing.T) (*ImportLogService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	require.NoError(t, err)
	return NewImportLogService(store, zap.NewNop()), dir
}

func TestImportLogListFiltersNonCSV(t *testing.T) {
	svc, dir := newLogFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import_errors_20240102_150405.csv"), []byte("Ligne\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	logs, err := svc.List()
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "import_errors_20240102_150405.csv", logs[0].Name)
	assert.Positive(t, logs[0].SizeBytes)
}

func TestImportLogDownload(t *testing.T) {
	svc, dir := newLogFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import_errors_20240102_150405.csv"), []byte("Ligne\n"), 0o644))

	file, err := svc.Download("import_errors_20240102_150405.csv")
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	require.NoError(t, err)
	assert.EqualValues(t, 6, info.Size())
}

func TestImportLogDownloadMissing(t *testing.T) {
	svc, _ := newLogFixture(t)

	_, err := svc.Download("import_errors_20990101_000000.csv")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}

func TestImportLogDownloadRejectsTraversal(t *testing.T) {
	svc, _ := newLogFixture(t)

	for _, name := range []string{"../secrets.csv", "../../etc/passwd.csv", "/etc/passwd.csv", "sub/../../escape.csv"} {
		_, err := svc.Download(name)
		require.Error(t, err, name)
		assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status, name)
	}
}

func TestImportLogDownloadRejectsNonCSV(t *testing.T) {
	svc, dir := newLogFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("x"), 0o644))

	_, err := svc.Download("config.yaml")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, appErrors.FromError(err).Status)
}
