package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/service/auth"
	pkgauth "github.com/jwalitptl/hospital-api/pkg/auth"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidation(); err != nil {
		panic(err)
	}
}

func newRouter() *gin.Engine {
	svc := auth.NewService(memory.NewStore().Users(),
		pkgauth.NewJWTService("test-secret", time.Hour, "hospital-api"),
		security.NewBcryptHasher(bcrypt.MinCost), nil)

	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"), middleware.NewAuthMiddleware(svc).Authenticate())
	return r
}

func call(t *testing.T, r *gin.Engine, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

func TestRegisterLoginProfile(t *testing.T) {
	r := newRouter()

	status, body := call(t, r, http.MethodPost, "/api/auth/register", "",
		`{"name": "Front Desk", "email": "desk@hospital.com", "password": "secret123"}`)
	require.Equal(t, http.StatusCreated, status, body)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "staff", user["role"])
	assert.NotContains(t, user, "passwordHash")

	status, body = call(t, r, http.MethodPost, "/api/auth/register", "",
		`{"name": "Again", "email": "desk@hospital.com", "password": "secret123"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "A user with this email already exists", body["message"])

	status, body = call(t, r, http.MethodPost, "/api/auth/login", "",
		`{"email": "desk@hospital.com", "password": "wrong-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["message"])

	status, body = call(t, r, http.MethodPost, "/api/auth/login", "",
		`{"email": "desk@hospital.com", "password": "secret123"}`)
	require.Equal(t, http.StatusOK, status, body)
	token := body["token"].(string)

	status, _ = call(t, r, http.MethodGet, "/api/auth/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = call(t, r, http.MethodGet, "/api/auth/profile", token, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "desk@hospital.com", body["email"])

	status, body = call(t, r, http.MethodPut, "/api/auth/profile", token, `{"name": "Reception"}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Reception", body["name"])
}
