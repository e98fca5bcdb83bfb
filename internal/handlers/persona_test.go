package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personas/internal/metrics"
	"personas/internal/models"
	"personas/internal/repositories"
	"personas/internal/services"
	"personas/pkg/database"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// a single connection keeps every query on the same in-memory database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(database.Schema)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repositories.NewPersonaRepository(db)
	service := services.NewPersonaService(repo, services.NewPersonaGenerator(1))
	handler := NewPersonaHandler(service, metrics.New(prometheus.NewRegistry()))
	healthHandler := NewHealthHandler()

	router := gin.New()
	personas := router.Group("/personas")
	{
		personas.POST("", handler.CreatePersona)
		personas.GET("", handler.ListPersonas)
		personas.DELETE("/reset", handler.ResetPersonas)
		personas.POST("/poblar", handler.PoblarPersonas)
		personas.GET("/estadisticas/dominios", handler.EstadisticasDominios)
		personas.GET("/estadisticas/edades", handler.EstadisticasEdades)
		personas.GET("/buscar", handler.BuscarPersonas)
		personas.GET("/reporte/activas", handler.ReporteActivas)
		personas.GET("/export", handler.ExportPersonas)
		personas.GET("/:id", handler.GetPersona)
		personas.PUT("/:id", handler.UpdatePersona)
		personas.DELETE("/:id", handler.DeletePersona)
	}
	router.GET("/health", healthHandler.HealthCheck)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"first_name": "Ana",
		"last_name":  "Gomez",
		"email":      email,
	}
}

func createPersona(t *testing.T, router *gin.Engine, email string) models.Persona {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/personas", createBody(email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var persona models.Persona
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &persona))
	return persona
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCreatePersonaEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	persona := createPersona(t, router, "ana@example.com")
	assert.Greater(t, persona.ID, int64(0))
	assert.Equal(t, "ana@example.com", persona.Email)
	assert.True(t, persona.IsActive)
	assert.False(t, persona.CreatedAt.IsZero())
}

func TestCreatePersonaValidation(t *testing.T) {
	router := setupTestRouter(t)

	testCases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing first name", map[string]interface{}{"last_name": "G", "email": "a@x.com"}},
		{"malformed email", map[string]interface{}{"first_name": "A", "last_name": "G", "email": "not-an-email"}},
		{"malformed birth date", map[string]interface{}{"first_name": "A", "last_name": "G", "email": "a@x.com", "birth_date": "10/05/1990"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/personas", tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		})
	}
}

func TestCreatePersonaDuplicate(t *testing.T) {
	router := setupTestRouter(t)

	createPersona(t, router, "dup@example.com")

	w := doJSON(t, router, http.MethodPost, "/personas", createBody("dup@example.com"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListPersonasEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	for i := 0; i < 3; i++ {
		createPersona(t, router, fmt.Sprintf("p%d@x.com", i))
	}

	w := doJSON(t, router, http.MethodGet, "/personas?skip=1&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var personas []models.Persona
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &personas))
	assert.Len(t, personas, 2)

	t.Run("empty table", func(t *testing.T) {
		empty := setupTestRouter(t)
		w := doJSON(t, empty, http.MethodGet, "/personas?skip=0&limit=1000", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("invalid pagination", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/personas?limit=1001", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = doJSON(t, router, http.MethodGet, "/personas?skip=abc", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestGetPersonaEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	persona := createPersona(t, router, "ana@example.com")

	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/personas/%d", persona.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/personas/99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/personas/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpdatePersonaEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	persona := createPersona(t, router, "ana@example.com")

	w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/personas/%d", persona.ID),
		map[string]interface{}{"first_name": "Maria"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Persona
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Maria", updated.FirstName)
	assert.Equal(t, "Gomez", updated.LastName)
	assert.Equal(t, "ana@example.com", updated.Email)

	t.Run("not found", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPut, "/personas/99999",
			map[string]interface{}{"first_name": "X"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		other := createPersona(t, router, "other@example.com")
		w := doJSON(t, router, http.MethodPut, fmt.Sprintf("/personas/%d", other.ID),
			map[string]interface{}{"email": "ana@example.com"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeletePersonaEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	persona := createPersona(t, router, "ana@example.com")

	w := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/personas/%d", persona.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/personas/%d", persona.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	createPersona(t, router, "a@x.com")
	createPersona(t, router, "b@x.com")

	w := doJSON(t, router, http.MethodDelete, "/personas/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Message      string `json:"message"`
		DeletedCount int64  `json:"deleted_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.DeletedCount)
	assert.NotEmpty(t, body.Message)

	w = doJSON(t, router, http.MethodGet, "/personas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPoblarEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/personas/poblar", map[string]interface{}{"cantidad": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "5 personas creadas exitosamente")

	var personas []models.Persona
	w = doJSON(t, router, http.MethodGet, "/personas?limit=100", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &personas))
	assert.Len(t, personas, 5)

	t.Run("out of range", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/personas/poblar", map[string]interface{}{"cantidad": 0})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		w = doJSON(t, router, http.MethodPost, "/personas/poblar", map[string]interface{}{"cantidad": 1001})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestEstadisticasDominiosEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	createPersona(t, router, "a@x.com")
	createPersona(t, router, "b@x.com")
	createPersona(t, router, "c@y.com")

	w := doJSON(t, router, http.MethodGet, "/personas/estadisticas/dominios", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"x.com":2,"y.com":1}`, w.Body.String())
}

func TestEstadisticasEdadesEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	body := createBody("dated@x.com")
	body["birth_date"] = "1990-05-10"
	w := doJSON(t, router, http.MethodPost, "/personas", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/personas/estadisticas/edades", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.AgeStatistics
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, stats.Min, stats.Max)
	assert.GreaterOrEqual(t, stats.Min, 18)
}

func TestBuscarEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	createPersona(t, router, "carlos@gmail.com")
	createPersona(t, router, "pedro@outlook.com")

	w := doJSON(t, router, http.MethodGet, "/personas/buscar?q=gmail", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var personas []models.Persona
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &personas))
	require.Len(t, personas, 1)
	assert.Equal(t, "carlos@gmail.com", personas[0].Email)
}

func TestReporteActivasEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	createPersona(t, router, "active@x.com")
	inactive := createBody("inactive@x.com")
	inactive["is_active"] = false
	w := doJSON(t, router, http.MethodPost, "/personas", inactive)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/personas/reporte/activas", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report []models.ActivePersona
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Len(t, report, 1)
	assert.Equal(t, "active@x.com", report[0].Email)
}

func TestExportEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	createPersona(t, router, "ana@example.com")

	w := doJSON(t, router, http.MethodGet, "/personas/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}
