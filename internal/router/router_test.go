package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type stubHandler struct {
	path string
}

func (h stubHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET(h.path, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"path": h.path})
	})
}

type stubAuthHandler struct{}

func (stubAuthHandler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	r.GET("/auth/profile", requireAuth, func(c *gin.Context) {
		id, _ := middleware.UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
}

type stubAuthenticator struct {
	valid string
}

func (a stubAuthenticator) Authenticate(token string) (*auth.Claims, error) {
	if token != a.valid {
		return nil, apperrors.Unauthorized("Invalid token", errors.New("bad token"))
	}
	return &auth.Claims{UserID: uuid.New(), Email: "admin@hospital.com", Role: "admin"}, nil
}

func newTestRouter(authRequired bool) *gin.Engine {
	nop := zerolog.Nop()
	r := NewRouter(
		middleware.NewAuthMiddleware(stubAuthenticator{valid: "good"}),
		prometheus.New(promclient.NewRegistry()),
		Handlers{
			Patient:     stubHandler{path: "/patients"},
			Doctor:      stubHandler{path: "/doctors"},
			Appointment: stubHandler{path: "/appointments"},
			Health:      stubHandler{path: "/health"},
			Auth:        stubAuthHandler{},
		},
		RouterConfig{
			Mode:         gin.TestMode,
			CORSConfig:   middleware.DefaultCORSConfig(),
			AuthRequired: authRequired,
		},
		&nop,
	)
	r.Setup()
	return r.Engine()
}

func serve(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_MountsUnderBasePath(t *testing.T) {
	r := newTestRouter(false)

	for _, path := range []string{"/api/health", "/api/patients", "/api/doctors", "/api/appointments"} {
		w := serve(r, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newTestRouter(false)

	w := serve(r, "/api/wards", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Route not found"}`, w.Body.String())
}

func TestRouter_Metrics(t *testing.T) {
	r := newTestRouter(false)
	serve(r, "/api/patients", "")

	w := serve(r, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",path="/api/patients",status="200"} 1`)
}

func TestRouter_AuthRequired(t *testing.T) {
	r := newTestRouter(true)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/api/patients", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/api/patients", "bad").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/api/patients", "good").Code)

	// health stays public
	assert.Equal(t, http.StatusOK, serve(r, "/api/health", "").Code)
}

func TestRouter_ProfileAlwaysNeedsToken(t *testing.T) {
	r := newTestRouter(false)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/api/auth/profile", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/api/auth/profile", "good").Code)
	assert.Equal(t, http.StatusOK, serve(r, "/api/patients", "").Code)
}
