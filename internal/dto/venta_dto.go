package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from query string of GET /v1/ventas.
type VentaFilter struct {
	FechaInicio string `form:"fecha_inicio"` // YYYY-MM-DD, inclusive
	FechaFin    string `form:"fecha_fin"`    // YYYY-MM-DD, inclusive
	Estado      string `form:"estado"        validate:"omitempty,oneof=PENDIENTE_PAGO PAGADA CANCELADA"`
	Tipo        string `form:"tipo"          validate:"omitempty,oneof=PRESENCIAL ONLINE"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ItemVentaRequest: PrecioUnitario defaults to the product's precio_venta.
type ItemVentaRequest struct {
	ProductoID     uint             `json:"producto_id"     validate:"required,min=1"`
	Cantidad       int              `json:"cantidad"        validate:"required,min=1"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
}

type CrearVentaPresencialRequest struct {
	ClienteID  *uint              `json:"cliente_id"  validate:"omitempty,min=1"`
	Items      []ItemVentaRequest `json:"items"       validate:"required,min=1,dive"`
	MetodoPago string             `json:"metodo_pago" validate:"omitempty,oneof=EFECTIVO QR TRANSFERENCIA TARJETA"`
}

type ClienteOnlineRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=150"`
	Telefono  string  `json:"telefono"  validate:"required,min=6,max=30"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Documento *string `json:"documento" validate:"omitempty,max=30"`
}

// CrearVentaOnlineRequest is posted by the public checkout.
// Online prices always come from the catalog; any client-sent price is ignored.
type CrearVentaOnlineRequest struct {
	Cliente        ClienteOnlineRequest `json:"cliente"         validate:"required"`
	Items          []ItemVentaRequest   `json:"items"           validate:"required,min=1,dive"`
	MetodoPago     string               `json:"metodo_pago"     validate:"required,oneof=QR TRANSFERENCIA"`
	ComprobanteURL *string              `json:"comprobante_url" validate:"omitempty,url"`
}

type ComprobantePagoRequest struct {
	Telefono       string `json:"telefono"        validate:"required"`
	Metodo         string `json:"metodo"          validate:"required,oneof=QR TRANSFERENCIA"`
	ComprobanteURL string `json:"comprobante_url" validate:"required,url"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleVentaResponse struct {
	ProductoID     uint            `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type PagoVentaResponse struct {
	ID             uint      `json:"id"`
	Metodo         string    `json:"metodo"`
	ComprobanteURL *string   `json:"comprobante_url"`
	Estado         string    `json:"estado"`
	Fecha          time.Time `json:"fecha"`
}

type VentaResponse struct {
	ID             uint                   `json:"id"`
	MicroempresaID uint                   `json:"microempresa_id"`
	ClienteID      *uint                  `json:"cliente_id"`
	Cliente        string                 `json:"cliente,omitempty"`
	UsuarioID      *uint                  `json:"usuario_id"`
	Fecha          time.Time              `json:"fecha"`
	Total          decimal.Decimal        `json:"total"`
	Estado         string                 `json:"estado"`
	Tipo           string                 `json:"tipo"`
	Detalles       []DetalleVentaResponse `json:"detalles"`
	Pagos          []PagoVentaResponse    `json:"pagos"`
}
