package webserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ideamill/ideamill/internal/models"
)

type stubPipeline struct{}

func (stubPipeline) Process(_ context.Context, input string) (*models.Outcome, error) {
	return &models.Outcome{Input: input, RunID: 1, Results: &models.Report{}}, nil
}

func (stubPipeline) History(context.Context) ([]models.Run, error) {
	return []models.Run{}, nil
}

func TestServerRoutesAPI(t *testing.T) {
	srv := New(Config{}, stubPipeline{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServerServesStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>hi</html>"), 0o644))

	srv := New(Config{StaticDir: dir}, stubPipeline{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hi")
}

func TestServerNoStaticDirReturns404AtRoot(t *testing.T) {
	srv := New(Config{}, stubPipeline{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerDefaultsPort(t *testing.T) {
	srv := New(Config{}, stubPipeline{})
	assert.Equal(t, ":3000", srv.srv.Addr)
}
