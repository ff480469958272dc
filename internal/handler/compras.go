package handler

import (
	"context"
	"net/http"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct{ svc service.CompraService }

func NewComprasHandler(svc service.CompraService) *ComprasHandler {
	return &ComprasHandler{svc: svc}
}

func (h *ComprasHandler) Crear(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var req dto.CrearCompraRequest
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

func (h *ComprasHandler) Listar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var filter dto.CompraFilter
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

func (h *ComprasHandler) Obtener(c *gin.Context) {
	h.transicion(c, h.svc.Obtener)
}

// AgregarDetalle POST /v1/compras/:id/detalles
func (h *ComprasHandler) AgregarDetalle(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.DetalleCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarDetalle(c.Request.Context(), alc, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarPago POST /v1/compras/:id/pagos
func (h *ComprasHandler) RegistrarPago(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.PagoCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPago(c.Request.Context(), alc, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Confirmar POST /v1/compras/:id/confirmar
func (h *ComprasHandler) Confirmar(c *gin.Context) { h.transicion(c, h.svc.Confirmar) }

// Finalizar POST /v1/compras/:id/finalizar
func (h *ComprasHandler) Finalizar(c *gin.Context) { h.transicion(c, h.svc.Finalizar) }

// Anular POST /v1/compras/:id/anular
func (h *ComprasHandler) Anular(c *gin.Context) { h.transicion(c, h.svc.Anular) }

type accionCompra func(ctx context.Context, alc service.Alcance, id uint) (*dto.CompraResponse, error)

func (h *ComprasHandler) transicion(c *gin.Context, fn accionCompra) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := fn(c.Request.Context(), alc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
