// internal/middleware/middleware_test.go
package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medical-back/internal/auth"
	"medical-back/internal/identity"
	"medical-back/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeResolver map[uint]*models.Doctor

func (f fakeResolver) DoctorForAccount(_ context.Context, accountID uint) (*models.Doctor, error) {
	if d, ok := f[accountID]; ok {
		return d, nil
	}
	if accountID == 500 {
		return nil, errors.New("db down")
	}
	return nil, identity.ErrNoDoctorProfile
}

func newRouter(tokens *auth.TokenManager, resolver DoctorResolver) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery(zerolog.Nop()))
	r.GET("/me", AuthMiddleware(tokens), RequireDoctor(resolver), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"phone": CurrentDoctor(c).PhoneNumber})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func doGet(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAndDoctor(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Minute, time.Hour)
	r := newRouter(tokens, fakeResolver{1: {ID: 10, PhoneNumber: "555"}})

	t.Run("MissingHeader", func(t *testing.T) {
		w := doGet(r, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("NotBearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("RefreshTokenRejected", func(t *testing.T) {
		pair, err := tokens.IssuePair(1)
		require.NoError(t, err)
		w := doGet(r, "/me", pair.Refresh)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Doctor", func(t *testing.T) {
		pair, err := tokens.IssuePair(1)
		require.NoError(t, err)
		w := doGet(r, "/me", pair.Access)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "555")
	})

	t.Run("NoDoctorProfile", func(t *testing.T) {
		pair, err := tokens.IssuePair(2)
		require.NoError(t, err)
		w := doGet(r, "/me", pair.Access)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ResolverFailure", func(t *testing.T) {
		pair, err := tokens.IssuePair(500)
		require.NoError(t, err)
		w := doGet(r, "/me", pair.Access)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRecoveryAndRequestID(t *testing.T) {
	r := newRouter(auth.NewTokenManager("s", time.Minute, time.Hour), fakeResolver{})

	w := doGet(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestID(), Logger(zerolog.New(&buf)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	doGet(r, "/ok", "")
	out := buf.String()
	assert.True(t, strings.Contains(out, `"path":"/ok"`), out)
	assert.True(t, strings.Contains(out, `"status":204`), out)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	doGet(r, "/items/1", "")
	doGet(r, "/items/2", "")
	doGet(r, "/nowhere", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/items/:id", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("unmatched", "GET", "404")))
}
