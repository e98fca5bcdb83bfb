package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"personas/internal/metrics"
	"personas/internal/models"
	"personas/internal/services"
)

type PersonaHandler struct {
	personaService *services.PersonaService
	metrics        *metrics.Metrics
}

func NewPersonaHandler(personaService *services.PersonaService, m *metrics.Metrics) *PersonaHandler {
	return &PersonaHandler{
		personaService: personaService,
		metrics:        m,
	}
}

// CreatePersona handles POST /personas
func (h *PersonaHandler) CreatePersona(c *gin.Context) {
	var input models.PersonaCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	persona, err := h.personaService.CreatePersona(&input)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	h.metrics.PersonasCreated.Inc()
	c.JSON(http.StatusCreated, persona)
}

// ListPersonas handles GET /personas with skip/limit pagination
func (h *PersonaHandler) ListPersonas(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "skip must be an integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "limit must be an integer"})
		return
	}

	personas, err := h.personaService.ListPersonas(skip, limit)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, personas)
}

// GetPersona handles GET /personas/:id
func (h *PersonaHandler) GetPersona(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	persona, err := h.personaService.GetPersona(id)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, persona)
}

// UpdatePersona handles PUT /personas/:id with a sparse payload
func (h *PersonaHandler) UpdatePersona(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input models.PersonaUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	persona, err := h.personaService.UpdatePersona(id, &input)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, persona)
}

// DeletePersona handles DELETE /personas/:id
func (h *PersonaHandler) DeletePersona(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.personaService.DeletePersona(id); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	h.metrics.PersonasDeleted.Inc()
	c.Status(http.StatusNoContent)
}

// ResetPersonas handles DELETE /personas/reset, purging every row
func (h *PersonaHandler) ResetPersonas(c *gin.Context) {
	deleted, err := h.personaService.Reset()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.metrics.ResetsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{
		"message":       "Base de datos limpiada. Se eliminaron todos los registros.",
		"deleted_count": deleted,
	})
}

// PoblarPersonas handles POST /personas/poblar
func (h *PersonaHandler) PoblarPersonas(c *gin.Context) {
	var input models.PoblarRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	total, err := h.personaService.Populate(input.Cantidad)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	h.metrics.PersonasPopulated.Add(float64(total))
	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("%d personas creadas exitosamente", total),
	})
}

// EstadisticasDominios handles GET /personas/estadisticas/dominios
func (h *PersonaHandler) EstadisticasDominios(c *gin.Context) {
	stats, err := h.personaService.StatisticsByDomain()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// EstadisticasEdades handles GET /personas/estadisticas/edades
func (h *PersonaHandler) EstadisticasEdades(c *gin.Context) {
	stats, err := h.personaService.StatisticsByAge()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// BuscarPersonas handles GET /personas/buscar?q=term
func (h *PersonaHandler) BuscarPersonas(c *gin.Context) {
	personas, err := h.personaService.SearchPersonas(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, personas)
}

// ReporteActivas handles GET /personas/reporte/activas
func (h *PersonaHandler) ReporteActivas(c *gin.Context) {
	report, err := h.personaService.ActiveReport()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// parseID reads the :id path param, answering 422 on a non-numeric value
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

// statusFromError maps domain errors to HTTP status codes
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrPersonaNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidArgument):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
