package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/forrest-fire-fund/cnx-backend/internal/communityplans"
	"github.com/forrest-fire-fund/cnx-backend/internal/gis"
	"github.com/forrest-fire-fund/cnx-backend/internal/support"
	"github.com/forrest-fire-fund/cnx-backend/internal/villages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	features := []gis.Feature{{Properties: map[string]any{"Vill_Th": "บ้านหนึ่ง"}}}
	snap := villages.NewSnapshot(&gis.Datasets{Features: features})

	return newRouter(deps{
		Villages: &villages.Handler{Snapshot: snap, Buildings: gis.NewBuildings(t.TempDir(), nil)},
		Plans:    communityplans.NewHandler(nil),
		Support:  support.NewHandler(),
		Log:      zap.NewNop(),
	})
}

func TestRootHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	RootHandler(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Server is up!\n", rr.Body.String())
}

func TestRouter_Mounts(t *testing.T) {
	srv := testRouter(t)

	cases := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodGet, "/api/villages/1", "", http.StatusOK},
		{http.MethodGet, "/api/stats", "", http.StatusOK},
		{http.MethodGet, "/api/buildings/none", "", http.StatusOK},
		{http.MethodGet, "/api/community-plans/not-a-uuid", "", http.StatusBadRequest},
		{http.MethodPatch, "/api/community-plans/x/status", `{"status":"nope"}`, http.StatusBadRequest},
		{http.MethodPost, "/api/support", `{}`, http.StatusBadRequest},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}
	for _, c := range cases {
		req := httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
		rr := httptest.NewRecorder()
		srv.ServeHTTP(rr, req)
		assert.Equal(t, c.want, rr.Code, "%s %s", c.method, c.path)
	}
}

func TestRouter_CORS(t *testing.T) {
	srv := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_PanicWritesEnvelope(t *testing.T) {
	srv := newRouter(deps{
		Villages: &villages.Handler{},
		Plans:    communityplans.NewHandler(nil),
		Support:  support.NewHandler(),
		Log:      zap.NewNop(),
	})

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/villages", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotEmpty(t, body["message"])
}
