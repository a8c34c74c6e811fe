package patient

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hospital-api/internal/middleware"
	"github.com/jwalitptl/hospital-api/internal/repository/memory"
	"github.com/jwalitptl/hospital-api/internal/service/identifier"
	"github.com/jwalitptl/hospital-api/internal/service/patient"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := middleware.SetupValidation(); err != nil {
		panic(err)
	}
}

func newRouter() *gin.Engine {
	store := memory.NewStore()
	ids := identifier.NewGenerator(identifier.NewCounterSequence(store.Sequences()))
	r := gin.New()
	NewHandler(patient.NewService(store.Patients(), ids, nil, nil)).RegisterRoutes(r.Group("/api"))
	return r
}

func call(t *testing.T, r *gin.Engine, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w.Code, out
}

const rahul = `{
	"name": "Rahul Sharma",
	"age": 35,
	"gender": "Male",
	"contact": {"phone": "01999888777", "email": "Rahul@Example.com"},
	"bloodGroup": "O+",
	"address": {"city": "Mumbai", "state": "Maharashtra"}
}`

func TestPatientLifecycle(t *testing.T) {
	r := newRouter()

	status, body := call(t, r, http.MethodPost, "/api/patients", rahul)
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "PAT0001", body["patientId"])
	assert.Equal(t, "rahul@example.com", body["contact"].(map[string]interface{})["email"])

	status, body = call(t, r, http.MethodGet, "/api/patients/PAT0001", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Rahul Sharma", body["name"])

	status, body = call(t, r, http.MethodPut, "/api/patients/PAT0001", `{"age": 36}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, float64(36), body["age"])
	assert.Equal(t, "Rahul Sharma", body["name"])

	status, body = call(t, r, http.MethodPost, "/api/patients/PAT0001/medical-history", `{"condition": "Hypertension", "diagnosedDate": "2020-03-15"}`)
	require.Equal(t, http.StatusCreated, status, body)
	history := body["medicalHistory"].([]interface{})
	require.Len(t, history, 1)
	assert.Equal(t, "2020-03-15", history[0].(map[string]interface{})["diagnosedDate"])

	status, body = call(t, r, http.MethodGet, "/api/patients?search=rahul", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	status, body = call(t, r, http.MethodDelete, "/api/patients/PAT0001", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Patient deleted successfully", body["message"])

	status, body = call(t, r, http.MethodGet, "/api/patients/PAT0001", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Patient not found", body["message"])
}

func TestCreatePatient_Errors(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing fields", `{"name": "Rahul Sharma"}`, "Please provide all required fields: age, gender, contact.phone, contact.email"},
		{"bad gender", `{"name": "A", "age": 3, "gender": "M", "contact": {"phone": "1", "email": "a@b.co"}}`, "gender must be one of [Male Female Other]"},
		{"unknown field", `{"name": "A", "nickname": "B"}`, `Unknown field "nickname"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, r, http.MethodPost, "/api/patients", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tt.message, body["message"])
		})
	}

	status, _ := call(t, r, http.MethodPost, "/api/patients", rahul)
	require.Equal(t, http.StatusCreated, status)

	dup := `{"patientId": "PAT0001", "name": "Copy", "age": 1, "gender": "Other", "contact": {"phone": "1", "email": "c@d.co"}}`
	status, body := call(t, r, http.MethodPost, "/api/patients", dup)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Patient with this ID already exists", body["message"])
}
