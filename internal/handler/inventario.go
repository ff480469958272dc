package handler

import (
	"net/http"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.StockService }

func NewInventarioHandler(svc service.StockService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// Listar GET /v1/inventario?bajo_minimo=true
func (h *InventarioHandler) Listar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var filter dto.StockFilter
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

// Obtener GET /v1/inventario/:producto_id
func (h *InventarioHandler) Obtener(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "producto_id")
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

// Ajustar godoc
// @Summary      Ajuste manual de stock
// @Description  Suma delta (negativo para bajas) a la cantidad fisica. El resultado nunca baja de cero.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id path int                    true "ID del producto"
// @Param        body        body dto.AjusteStockRequest true "Delta y motivo"
// @Success      200 {object} dto.StockResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/inventario/{producto_id}/ajuste [post]
func (h *InventarioHandler) Ajustar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "producto_id")
	if !ok {
		return
	}
	var req dto.AjusteStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarManual(c.Request.Context(), alc, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Configurar PUT /v1/inventario/:producto_id/configuracion
func (h *InventarioHandler) Configurar(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "producto_id")
	if !ok {
		return
	}
	var req dto.ConfigurarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConfigurarStock(c.Request.Context(), alc, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockInicial POST /v1/inventario/:producto_id/inicial
func (h *InventarioHandler) StockInicial(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "producto_id")
	if !ok {
		return
	}
	var req dto.StockInicialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarStockInicial(c.Request.Context(), alc, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarMovimientos GET /v1/inventario/movimientos?producto_id=
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), alc, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
