package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/document-gateway/internal/config"
)

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "cache"}
}

// newCachedEcho registers GET /items behind the response cache and
// returns the instance plus a hit counter for the underlying handler.
func newCachedEcho(t *testing.T, cfg config.CacheConfig, rdb *redis.Client) (*echo.Echo, *int) {
	t.Helper()
	calls := 0
	e := echo.New()
	e.GET("/items", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"items": []string{"a", "b"}})
	}, NewResponseCache(cfg, rdb))
	e.POST("/items", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"created": true})
	}, NewResponseCache(cfg, rdb))
	return e, &calls
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestResponseCacheStoresAndServes(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	e, calls := newCachedEcho(t, cacheConfig(), rdb)

	rec := get(e, "/items")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	first := rec.Body.String()
	if *calls != 1 {
		t.Fatalf("handler calls = %d, want 1", *calls)
	}

	// Second request is served from Redis without reaching the handler.
	rec = get(e, "/items")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	if rec.Body.String() != first {
		t.Fatalf("cached body %q differs from original %q", rec.Body.String(), first)
	}
	if *calls != 1 {
		t.Fatalf("handler calls = %d, want 1 after cache hit", *calls)
	}
}

func TestResponseCacheKeyIncludesQuery(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	e, calls := newCachedEcho(t, cacheConfig(), rdb)

	get(e, "/items?page=1")
	get(e, "/items?page=2")
	if *calls != 2 {
		t.Fatalf("handler calls = %d, want 2 for distinct queries", *calls)
	}
}

func TestResponseCacheEntriesExpire(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	e, calls := newCachedEcho(t, cacheConfig(), rdb)

	get(e, "/items")
	mr.FastForward(2 * time.Minute)
	get(e, "/items")
	if *calls != 2 {
		t.Fatalf("handler calls = %d, want 2 after TTL expiry", *calls)
	}
}

func TestResponseCacheSkipsNonGET(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	e, calls := newCachedEcho(t, cacheConfig(), rdb)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/items", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200", rec.Code)
		}
	}
	if *calls != 2 {
		t.Fatalf("handler calls = %d, want 2; POST must never be cached", *calls)
	}
}

func TestResponseCachePassThrough(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.CacheConfig
		rdb  *redis.Client
	}{
		{"nil client", cacheConfig(), nil},
		{"disabled", config.CacheConfig{Enabled: false}, redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, calls := newCachedEcho(t, tc.cfg, tc.rdb)
			get(e, "/items")
			get(e, "/items")
			if *calls != 2 {
				t.Fatalf("handler calls = %d, want 2 in pass-through mode", *calls)
			}
		})
	}
}
