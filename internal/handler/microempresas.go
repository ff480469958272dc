package handler

import (
	"net/http"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/gin-gonic/gin"
)

type MicroempresasHandler struct{ svc service.MicroempresaService }

func NewMicroempresasHandler(svc service.MicroempresaService) *MicroempresasHandler {
	return &MicroempresasHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar microempresa
// @Description  Solo superadmin. Opcionalmente crea su primer usuario admin en la misma transaccion.
// @Tags         microempresas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearMicroempresaRequest true "Datos de la microempresa"
// @Success      201  {object} dto.MicroempresaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/microempresas [post]
func (h *MicroempresasHandler) Crear(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var req dto.CrearMicroempresaRequest
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

func (h *MicroempresasHandler) Listar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), alc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MicroempresasHandler) Obtener(c *gin.Context) {
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

func (h *MicroempresasHandler) Actualizar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarMicroempresaRequest
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

// CambiarEstado PATCH /v1/microempresas/:id/estado
func (h *MicroempresasHandler) CambiarEstado(c *gin.Context) {
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
