package handler

import (
	"net/http"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/gin-gonic/gin"
)

type PlanesHandler struct{ svc service.PlanService }

func NewPlanesHandler(svc service.PlanService) *PlanesHandler {
	return &PlanesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear plan de suscripcion
// @Description  Solo superadmin. Un limite nulo significa sin limite.
// @Tags         planes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.PlanRequest true "Datos del plan"
// @Success      201  {object} dto.PlanResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/planes [post]
func (h *PlanesHandler) Crear(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var req dto.PlanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), alc, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar planes
// @Tags         planes
// @Produce      json
// @Security     BearerAuth
// @Param        activo query bool false "Filtrar por estado"
// @Success      200  {array} dto.PlanResponse
// @Router       /v1/planes [get]
func (h *PlanesHandler) Listar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var filter dto.PlanFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), alc, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanesHandler) Obtener(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), alc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanesHandler) Actualizar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PlanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), alc, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CambiarEstado PATCH /v1/planes/:id/estado
func (h *PlanesHandler) CambiarEstado(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.EstadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), alc, id, *req.Activo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar plan
// @Description  Solo planes que nunca tuvieron suscripciones; los demas se desactivan.
// @Tags         planes
// @Security     BearerAuth
// @Param        id path int true "ID del plan"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/planes/{id} [delete]
func (h *PlanesHandler) Eliminar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), alc, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
