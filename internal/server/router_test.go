package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anilistapi/internal/anilist"
	"anilistapi/internal/cache"
	"anilistapi/internal/media"
	"anilistapi/internal/middleware"
	"anilistapi/pkg/models"
)

type stubUpstream struct {
	calls int
}

func (s *stubUpstream) Page(_ context.Context, q anilist.Query, vars anilist.Variables) (*models.PageResult, error) {
	s.calls++
	return &models.PageResult{
		PageInfo: models.PageInfo{CurrentPage: vars.Page, PerPage: vars.PerPage},
		Media:    []models.MediaRecord{{ID: 1}},
	}, nil
}

func (s *stubUpstream) Media(_ context.Context, q anilist.Query, vars anilist.Variables) (*models.MediaRecord, error) {
	s.calls++
	if vars.ID == 500 {
		panic("boom")
	}
	return &models.MediaRecord{ID: vars.ID}, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *cache.Cache[models.Result], *stubUpstream) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	c := cache.New[models.Result](cache.Options{Name: "server_test", TTL: time.Hour})
	t.Cleanup(c.Close)

	up := &stubUpstream{}
	r := NewRouter(Deps{
		Log:      log,
		Media:    media.NewHandler(up, c, log),
		Endpoint: "http://upstream.test",
		Version:  "test",
	})
	return r, c, up
}

func get(r http.Handler, path string, header ...string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	r.ServeHTTP(w, req)
	return w
}

func TestWelcome(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := get(r, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, WelcomeMessage, w.Body.String())
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
}

func TestHealthAndReady(t *testing.T) {
	r, c, _ := newTestRouter(t)

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = get(r, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	c.Close()
	w = get(r, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDebugReportsCache(t *testing.T) {
	r, _, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, get(r, "/manga/top100").Code)

	w := get(r, "/debug")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["cache_entries"])
	assert.Equal(t, "1h0m0s", body["cache_ttl"])
	assert.Equal(t, "10m0s", body["cache_sweep"])
	assert.Equal(t, "http://upstream.test", body["upstream"])
}

func TestMetricsExposesCacheCounters(t *testing.T) {
	r, _, _ := newTestRouter(t)

	get(r, "/anime/trending")
	get(r, "/anime/trending")

	w := get(r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anilistapi_cache_hits_total")
}

func TestRequestIDEchoed(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := get(r, "/health", middleware.HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(middleware.HeaderRequestID))

	w = get(r, "/health")
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
}

func TestCORS(t *testing.T) {
	r, _, _ := newTestRouter(t)

	// httptest requests carry Host example.com, so that origin counts as same-origin
	w := get(r, "/health", "Origin", "http://frontend.test")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPanicBecomesFailureEnvelope(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := get(r, "/manga/500")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"boom"}`, w.Body.String())
}

func TestMediaRoutesMounted(t *testing.T) {
	r, _, up := newTestRouter(t)

	w := get(r, "/manga/search/one%20piece?page=2&perPage=5")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Pagination models.PageInfo `json:"pagination"`
		Cached     bool            `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Pagination.CurrentPage)
	assert.Equal(t, 5, body.Pagination.PerPage)
	assert.False(t, body.Cached)
	assert.Equal(t, 1, up.calls)
}

func TestNoRoute(t *testing.T) {
	r, _, _ := newTestRouter(t)

	w := get(r, "/novels/top100")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
