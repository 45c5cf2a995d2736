package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/flight-ticket-booking/internal/config"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{"GET": true},
		TTL:          30 * time.Second,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func newCachedEcho(t *testing.T) *echo.Echo {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	mw := NewRedisCache(testCacheConfig(), rdb)
	e.GET("/v1/flights/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, "flight-"+c.Param("id"))
	}, mw)
	return e
}

func doGet(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// Two ids share the /v1/flights/:id pattern but must never share a
// cache entry.
func TestCacheKeysOnConcretePath(t *testing.T) {
	e := newCachedEcho(t)

	first := doGet(e, "/v1/flights/1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "flight-1", first.Body.String())

	hit := doGet(e, "/v1/flights/1")
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.Equal(t, "flight-1", hit.Body.String())

	other := doGet(e, "/v1/flights/2")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Equal(t, "flight-2", other.Body.String())
}

func TestCacheKeyDiffersPerPathAndQuery(t *testing.T) {
	e := echo.New()
	cfg := testCacheConfig()

	key := func(target string) string {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/v1/flights/:id")
		return cacheKeyFrom(cfg, c)
	}

	assert.NotEqual(t, key("/v1/flights/1"), key("/v1/flights/2"))
	assert.NotEqual(t, key("/v1/flights?from=Kyiv"), key("/v1/flights?from=Lviv"))
	assert.Equal(t, key("/v1/flights/1"), key("/v1/flights/1"))
}

func TestCacheSkipsUnlistedMethods(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := echo.New()
	mw := NewRedisCache(testCacheConfig(), rdb)
	e.POST("/v1/flights", func(c echo.Context) error {
		return c.String(http.StatusOK, "created")
	}, mw)

	req := httptest.NewRequest(http.MethodPost, "/v1/flights", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Empty(t, mr.Keys())
}
