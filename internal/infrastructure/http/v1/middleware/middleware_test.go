package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/core/apperror"
	"orderdesk/internal/infrastructure/dataloader"
)

func serve(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	return r
}

func TestErrorHandler(t *testing.T) {
	r := newEngine()
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("order", "o-1"))
	})
	r.GET("/internal", func(c *gin.Context) {
		_ = c.Error(apperror.NewInternal(errors.New("pq: secret table")).WithDetail("table", "secret"))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	rec, body := serve(t, r, "/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apperror.CodeNotFound, body["code"])
	assert.Equal(t, "o-1", body["details"].(map[string]any)["id"])

	rec, body = serve(t, r, "/internal")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotEmpty(t, body["details"].(map[string]any)["request_id"])

	rec, body = serve(t, r, "/plain")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
}

func TestRecovery(t *testing.T) {
	r := newEngine()
	r.GET("/panic", func(c *gin.Context) {
		panic("nil map")
	})

	rec, body := serve(t, r, "/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
}

func TestLoaders_FreshSetPerRequest(t *testing.T) {
	var built []*dataloader.Loaders
	r := newEngine()
	r.Use(Loaders(func() *dataloader.Loaders {
		l := &dataloader.Loaders{}
		built = append(built, l)
		return l
	}))

	var seen []*dataloader.Loaders
	r.GET("/", func(c *gin.Context) {
		seen = append(seen, dataloader.FromContext(c.Request.Context()))
		c.Status(http.StatusNoContent)
	})

	serve(t, r, "/")
	serve(t, r, "/")

	require.Len(t, built, 2)
	assert.Equal(t, built, seen)
	assert.NotSame(t, seen[0], seen[1])
}
