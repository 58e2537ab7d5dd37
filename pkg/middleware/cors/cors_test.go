package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(origins []string, method, origin string, preflight bool) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(New(origins))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(method, "/ping", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAllowedOriginIsReflected(t *testing.T) {
	rec := serve([]string{"https://Campus.example.edu/"}, http.MethodGet, "https://campus.example.edu", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://campus.example.edu", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestUnknownOriginPreflightRejected(t *testing.T) {
	rec := serve([]string{"https://campus.example.edu"}, http.MethodOptions, "https://evil.example.com", true)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownOriginSimpleRequestGetsNoHeaders(t *testing.T) {
	rec := serve([]string{"https://campus.example.edu"}, http.MethodGet, "https://evil.example.com", false)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightAllowedInDevelopment(t *testing.T) {
	rec := serve(nil, http.MethodOptions, "http://localhost:3000", true)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestPolicyAllows(t *testing.T) {
	p := NewPolicy([]string{" https://a.edu ", ""})
	assert.True(t, p.Allows("https://A.edu/"))
	assert.False(t, p.Allows("https://b.edu"))
	assert.False(t, p.Allows(""))
}
