package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jamb/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	newReq := func(ip string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip)
		return req
	}

	assert.Equal(t, http.StatusOK, perform(r, newReq("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, perform(r, newReq("10.0.0.1")).Code)
	w := perform(r, newReq("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, perform(r, newReq("10.0.0.2")).Code, "limits are per client")
}

func TestRateLimiterStoreDropsIdleVisitors(t *testing.T) {
	store := newRateLimiterStore(10)
	start := time.Now()
	store.lastSweep = start
	store.getLimiter("a", start)
	store.getLimiter("b", start.Add(limiterIdleTTL/2))

	store.getLimiter("c", start.Add(limiterIdleTTL+time.Second))
	assert.NotContains(t, store.visitors, "a")
	assert.Contains(t, store.visitors, "b")
	assert.Contains(t, store.visitors, "c")
}

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.9:1234", "203.0.113.7"},
		{"bogus forwarded", map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "198.51.100.2"}, "10.0.0.9:1234", "198.51.100.2"},
		{"remote", nil, "192.0.2.4:5555", "192.0.2.4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, getClientIP(c))
		})
	}
}

func TestAdminAuthMiddleware(t *testing.T) {
	handler := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	r := gin.New()
	r.GET("/admin", AdminAuthMiddleware("s3cret"), handler)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, perform(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Admin-Key", "s3cret")
	assert.Equal(t, http.StatusNoContent, perform(r, req).Code)

	disabled := gin.New()
	disabled.GET("/admin", AdminAuthMiddleware(""), handler)
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Admin-Key", "")
	assert.Equal(t, http.StatusForbidden, perform(disabled, req).Code)
}

type fakeAuth struct {
	err error
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "user-" + token, nil
}

func TestJWTAuthUserMiddleware(t *testing.T) {
	build := func(auth Authenticator) *gin.Engine {
		r := gin.New()
		r.GET("/me", JWTAuthUserMiddleware(auth), func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString("userID")+"|"+c.GetString("token"))
		})
		return r
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, perform(build(fakeAuth{}), req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	w := perform(build(fakeAuth{}), req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-abc|abc", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	w = perform(build(fakeAuth{err: utils.NewAuthError("token has been revoked")}), req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	w = perform(build(fakeAuth{err: errors.New("redis down")}), req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), MetricsMiddleware())
	r.GET("/items/:id", func(c *gin.Context) {
		_, ok := c.Get("logger")
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	w := perform(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/items/7", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w = perform(r, req)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}
