package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yeisme/reportvault/pkg/configs"
)

func authEngine(conf configs.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AuthMiddleware(conf))
	r.GET("/*path", func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c)) })

	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := authEngine(configs.AuthConfig{
		Enabled:     true,
		UserHeaders: []string{"X-Auth-Request-Email"},
		SkipPaths:   []string{"/api/v1/health"},
	})

	tests := []struct {
		name   string
		path   string
		header map[string]string
		code   int
		user   string
	}{
		{name: "identity header", path: "/api/v1/folders", header: map[string]string{"X-Auth-Request-Email": "a@x.io"}, code: http.StatusOK, user: "a@x.io"},
		{name: "untrusted X-User", path: "/api/v1/folders", header: map[string]string{"X-User": "bob"}, code: http.StatusUnauthorized},
		{name: "skipped path", path: "/api/v1/health/db", code: http.StatusOK},
		{name: "missing identity", path: "/api/v1/reports", code: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)

			if tt.code == http.StatusOK {
				assert.Equal(t, tt.user, w.Body.String())
			}
		})
	}
}

func roleEngine(conf configs.AuthConfig) func(path string, headers map[string]string) int {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(
		AuthMiddleware(configs.AuthConfig{TrustUserHeader: true, SkipPaths: []string{"/public"}}),
		RoleMiddleware(conf),
	)
	r.GET("/admin", RequireMinRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/public/admin", RequireMinRole(RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return func(path string, headers map[string]string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		return w.Code
	}
}

func TestRoleMiddleware(t *testing.T) {
	call := roleEngine(configs.AuthConfig{TrustRoleHeader: true, DefaultRole: "assistant"})

	assert.Equal(t, http.StatusNoContent, call("/admin", map[string]string{"X-User": "root", "X-Role": "admin"}))
	assert.Equal(t, http.StatusForbidden, call("/admin", map[string]string{"X-User": "amy"}))
	assert.Equal(t, http.StatusForbidden, call("/public/admin", map[string]string{"X-Role": "admin"}), "anonymous requests never get admin")
}

func TestRoleMiddlewareIgnoresUntrustedRoleHeader(t *testing.T) {
	call := roleEngine(configs.AuthConfig{DefaultRole: "assistant", AdminUsers: []string{"Root@Example.com"}})

	assert.Equal(t, http.StatusForbidden, call("/admin", map[string]string{"X-User": "amy", "X-Role": "admin"}))
	assert.Equal(t, http.StatusNoContent, call("/admin", map[string]string{"X-User": "root@example.com"}))
	assert.Equal(t, http.StatusNoContent, call("/admin", map[string]string{"X-User": "root@example.com", "X-Role": "assistant"}))
	assert.Equal(t, http.StatusForbidden, call("/public/admin", map[string]string{"X-User": "root@example.com"}), "skipped paths stay anonymous")

	call = roleEngine(configs.AuthConfig{DefaultRole: "admin"})
	assert.Equal(t, http.StatusNoContent, call("/admin", map[string]string{"X-User": "amy", "X-Role": "assistant"}))
}
