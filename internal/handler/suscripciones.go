package handler

import (
	"net/http"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/gin-gonic/gin"
)

type SuscripcionesHandler struct{ svc service.SuscripcionService }

func NewSuscripcionesHandler(svc service.SuscripcionService) *SuscripcionesHandler {
	return &SuscripcionesHandler{svc: svc}
}

// Crear godoc
// @Summary      Suscribir microempresa a un plan
// @Description  Solo superadmin. Da de baja la suscripcion activa anterior. Sin fecha_fin dura 30 dias.
// @Tags         suscripciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearSuscripcionRequest true "Microempresa y plan"
// @Success      201  {object} dto.SuscripcionResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/suscripciones [post]
func (h *SuscripcionesHandler) Crear(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var req dto.CrearSuscripcionRequest
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

func (h *SuscripcionesHandler) Listar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var filter dto.SuscripcionFilter
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

func (h *SuscripcionesHandler) Obtener(c *gin.Context) {
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

func (h *SuscripcionesHandler) Actualizar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarSuscripcionRequest
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

// DarDeBaja PATCH /v1/suscripciones/:id/baja
func (h *SuscripcionesHandler) DarDeBaja(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.DarDeBaja(c.Request.Context(), alc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Vigente godoc
// @Summary      Suscripcion vigente de una microempresa
// @Description  Incluye el uso actual frente a los limites del plan.
// @Tags         suscripciones
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID de la microempresa"
// @Success      200  {object} dto.SuscripcionVigenteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/microempresas/{id}/suscripcion [get]
func (h *SuscripcionesHandler) Vigente(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Vigente(c.Request.Context(), alc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
