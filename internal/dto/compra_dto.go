package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearCompraRequest struct {
	ProveedorID uint    `json:"proveedor_id" validate:"required,min=1"`
	Observacion *string `json:"observacion"  validate:"omitempty,max=500"`
}

type DetalleCompraRequest struct {
	ProductoID    uint            `json:"producto_id"    validate:"required,min=1"`
	Cantidad      int             `json:"cantidad"       validate:"required,min=1"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"required,gt=0"`
}

type PagoCompraRequest struct {
	MetodoPagoID uint            `json:"metodo_pago_id" validate:"required,min=1"`
	Monto        decimal.Decimal `json:"monto"          validate:"required,gt=0"`
	Referencia   *string         `json:"referencia"     validate:"omitempty,max=120"`
}

type CompraFilter struct {
	Estado      string `form:"estado"       validate:"omitempty,oneof=REGISTRADA CONFIRMADA PAGADA ANULADA"`
	ProveedorID uint   `form:"proveedor_id"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleCompraResponse struct {
	ID            uint            `json:"id"`
	ProductoID    uint            `json:"producto_id"`
	Producto      string          `json:"producto"`
	Cantidad      int             `json:"cantidad"`
	CostoUnitario decimal.Decimal `json:"costo_unitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type PagoCompraResponse struct {
	ID           uint            `json:"id"`
	MetodoPagoID uint            `json:"metodo_pago_id"`
	Metodo       string          `json:"metodo"`
	Monto        decimal.Decimal `json:"monto"`
	Referencia   *string         `json:"referencia"`
	Fecha        time.Time       `json:"fecha"`
}

type CompraResponse struct {
	ID          uint                    `json:"id"`
	ProveedorID uint                    `json:"proveedor_id"`
	Proveedor   string                  `json:"proveedor"`
	Fecha       time.Time               `json:"fecha"`
	Total       decimal.Decimal         `json:"total"`
	Pagado      decimal.Decimal         `json:"pagado"`
	Estado      string                  `json:"estado"`
	Observacion *string                 `json:"observacion"`
	Detalles    []DetalleCompraResponse `json:"detalles"`
	Pagos       []PagoCompraResponse    `json:"pagos"`
}

type CompraListResponse struct {
	Data  []CompraResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
