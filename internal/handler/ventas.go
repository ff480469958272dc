package handler

import (
	"fmt"
	"net/http"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary      Registrar una venta presencial
// @Description  Venta atomica: verifica stock de todas las lineas, registra la venta PAGADA y descuenta stock. Si falta stock en alguna linea no se persiste nada.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearVentaPresencialRequest true "Detalle de la venta"
// @Success      201  {object} dto.VentaResponse
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.StockError
// @Router       /v1/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var req dto.CrearVentaPresencialRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearVentaPresencial(c.Request.Context(), alc, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarVentas godoc
// @Summary      Listar ventas
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha_inicio query string false "YYYY-MM-DD"
// @Param        fecha_fin    query string false "YYYY-MM-DD"
// @Param        estado       query string false "PENDIENTE_PAGO | PAGADA | CANCELADA"
// @Param        tipo         query string false "PRESENCIAL | ONLINE"
// @Success      200 {object} dto.VentaListResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), alc, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), alc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ValidarPago godoc
// @Summary      Validar el pago de una venta online
// @Description  Idempotente: validar una venta ya PAGADA no tiene efecto. Consume la reserva y descuenta stock.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ventas/{id}/validar [post]
func (h *VentasHandler) ValidarPago(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ValidarPago(c.Request.Context(), alc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RechazarPago godoc
// @Summary      Rechazar el pago de una venta online
// @Description  Cancela la venta y libera la reserva. Rechazar una venta ya CANCELADA no tiene efecto.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ventas/{id}/rechazar [post]
func (h *VentasHandler) RechazarPago(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.RechazarPago(c.Request.Context(), alc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DescargarPDF GET /v1/ventas/:id/pdf
func (h *VentasHandler) DescargarPDF(c *gin.Context) {
	alc, ok := alcance(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	pdf, err := h.svc.ComprobantePDF(c.Request.Context(), alc, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="venta-%d.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ── Public checkout ──────────────────────────────────────────────────────────

// CrearVentaOnline godoc
// @Summary      Checkout publico
// @Description  Crea una venta ONLINE en PENDIENTE_PAGO y reserva el stock de cada linea.
// @Tags         publico
// @Accept       json
// @Produce      json
// @Param        id   path int                         true "ID de la microempresa"
// @Param        body body dto.CrearVentaOnlineRequest true "Cliente, lineas y metodo de pago"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} apierror.StockError
// @Router       /v1/public/microempresas/{id}/ventas [post]
func (h *VentasHandler) CrearVentaOnline(c *gin.Context) {
	mid, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CrearVentaOnlineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearVentaOnline(c.Request.Context(), mid, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RegistrarComprobante godoc
// @Summary      Adjuntar comprobante de pago
// @Description  El cliente identifica la venta con su telefono. Solo mientras la venta esta PENDIENTE_PAGO.
// @Tags         publico
// @Accept       json
// @Produce      json
// @Param        id   path int                        true "ID de la venta"
// @Param        body body dto.ComprobantePagoRequest true "Comprobante"
// @Success      201  {object} dto.VentaResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/public/ventas/{id}/comprobante [post]
func (h *VentasHandler) RegistrarComprobante(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ComprobantePagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarComprobante(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
