package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	router := gin.New()
	router.Use(Middleware())
	router.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})
	return router, &seen
}

func TestRequestIDGenerated(t *testing.T) {
	router, seen := newRouter()

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	id := resp.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Equal(t, id, *seen)
}

func TestRequestIDHonorsInbound(t *testing.T) {
	router, seen := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "proxy-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, "proxy-42", resp.Header().Get("X-Request-ID"))
	assert.Equal(t, "proxy-42", *seen)
}

func TestRequestIDReplacesOversizedInbound(t *testing.T) {
	router, _ := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", maxInboundIDLength+1))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	id := resp.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.LessOrEqual(t, len(id), maxInboundIDLength)
}
