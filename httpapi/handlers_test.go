package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DGEXSolutions/chartos/schema"
	"github.com/DGEXSolutions/chartos/writepath"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	dest []interface{}
	err  error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *int:
			*v = r.dest[i].(int)
		case *[]byte:
			*v = r.dest[i].([]byte)
		}
	}
	return nil
}

type fakeDB struct {
	healthErr error
	tileBytes []byte
	tileErr   error
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	if strings.Contains(sql, "SELECT 1") {
		if f.healthErr != nil {
			return fakeRow{err: f.healthErr}
		}
		return fakeRow{dest: []interface{}{1}}
	}
	if f.tileErr != nil {
		return fakeRow{err: f.tileErr}
	}
	return fakeRow{dest: []interface{}{f.tileBytes}}
}

type fakeRedis struct {
	err error
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

type fakeCache struct {
	stored map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{stored: map[string][]byte{}} }

func (f *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	return f.stored[key], nil
}

func (f *fakeCache) Put(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	f.stored[key] = data
	return nil
}

func testLayerConfig() *schema.Config {
	cfg, err := schema.ParseYAML([]byte(`
name: test_config
description: a test config
layers:
  - name: osrd_track_section
    id_field_name: entity_id
    description: track sections
    attribution: OSRD
    fields:
      - name: entity_id
        description: id
        type: bigint
      - name: geom_geo
        description: geometry
        type: geom
    views:
      - name: geo
        on_field: geom_geo
`))
	if err != nil {
		panic(err)
	}
	return cfg
}

func newTestServer(db *fakeDB, redisErr error) (*Server, *fakeCache) {
	cache := newFakeCache()
	logger := logrus.New()
	logger.SetOutput(nopWriter{})
	return &Server{
		Config:    testLayerConfig(),
		DB:        db,
		Redis:     &fakeRedis{err: redisErr},
		Cache:     cache,
		WritePath: writepath.New(nil, nil, 18),
		RootURL:   "http://localhost:8080",
		MaxZoom:   18,
		Log:       logger,
	}, cache
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestHandleHealthOK(t *testing.T) {
	srv, _ := newTestServer(&fakeDB{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleHealthFailsOnRedisError(t *testing.T) {
	srv, _ := newTestServer(&fakeDB{}, context.DeadlineExceeded)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleInfoListsLayers(t *testing.T) {
	srv, _ := newTestServer(&fakeDB{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "test_config")
}

func TestHandleMVTMetadataUnknownLayer(t *testing.T) {
	srv, _ := newTestServer(&fakeDB{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/layer/does_not_exist/mvt/geo/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleMVTMetadataOK(t *testing.T) {
	srv, _ := newTestServer(&fakeDB{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/layer/osrd_track_section/mvt/geo/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "vector", body["type"])
}

func TestHandleTileServesFromCacheWithoutHittingDB(t *testing.T) {
	db := &fakeDB{tileErr: context.DeadlineExceeded} // would fail if the handler queried it
	srv, cache := newTestServer(db, nil)
	cache.stored["chartos.layer.osrd_track_section.geo.version_.tile/14/8299/5632"] = []byte("cached-mvt")

	req := httptest.NewRequest(http.MethodGet, "/tile/osrd_track_section/geo/14/8299/5632/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "cached-mvt", rec.Body.String())
}

func TestHandleTileFallsBackToSQLOnCacheMiss(t *testing.T) {
	db := &fakeDB{tileBytes: []byte("fresh-mvt")}
	srv, cache := newTestServer(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/tile/osrd_track_section/geo/14/8299/5632/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "fresh-mvt", rec.Body.String())
	require.Equal(t, []byte("fresh-mvt"), cache.stored["chartos.layer.osrd_track_section.geo.version_.tile/14/8299/5632"])
}

func TestHandleTileRejectsBadCoordinates(t *testing.T) {
	srv, _ := newTestServer(&fakeDB{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/tile/osrd_track_section/geo/not-a-number/8299/5632/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePushUnknownLayerIs500NotNotFound(t *testing.T) {
	// Unlike the tile route, push has no 404 case (spec.md §6): an unknown
	// layer surfaces the same way modify.py's unguarded
	// config.layers[layer_slug] KeyError would, as a 500.
	srv, _ := newTestServer(&fakeDB{}, nil)
	body := strings.NewReader(`[]`)
	req := httptest.NewRequest(http.MethodPost, "/push/does_not_exist/insert/", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlePushRejectsUnknownChangeType(t *testing.T) {
	srv, _ := newTestServer(&fakeDB{}, nil)
	body := strings.NewReader(`[]`)
	req := httptest.NewRequest(http.MethodPost, "/push/osrd_track_section/upsert/", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePushRejectsInvalidJSON(t *testing.T) {
	srv, _ := newTestServer(&fakeDB{}, nil)
	body := strings.NewReader(`not json`)
	req := httptest.NewRequest(http.MethodPost, "/push/osrd_track_section/insert/", body)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
