package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProveedorRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=150"`
	NIT       *string `json:"nit"       validate:"omitempty,max=30"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=30"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
}

type ActualizarProveedorRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=150"`
	NIT       *string `json:"nit"       validate:"omitempty,max=30"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=30"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Direccion *string `json:"direccion"`
	Activo    *bool   `json:"activo"`
}

type VincularProductoRequest struct {
	ProductoID       uint             `json:"producto_id"       validate:"required,min=1"`
	PrecioReferencia *decimal.Decimal `json:"precio_referencia"`
}

type MetodoPagoProveedorRequest struct {
	Metodo  string  `json:"metodo"  validate:"required,oneof=EFECTIVO QR TRANSFERENCIA CHEQUE"`
	Detalle *string `json:"detalle" validate:"omitempty,max=255"`
}

// ActualizarPreciosMasivoRequest raises (or lowers, with a negative value) every
// active reference price of a supplier by Porcentaje percent.
type ActualizarPreciosMasivoRequest struct {
	Porcentaje decimal.Decimal `json:"porcentaje" validate:"required"`
	Preview    bool            `json:"preview"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProveedorProductoResponse struct {
	ProductoID       uint             `json:"producto_id"`
	Producto         string           `json:"producto"`
	PrecioReferencia *decimal.Decimal `json:"precio_referencia"`
	Activo           bool             `json:"activo"`
}

type MetodoPagoProveedorResponse struct {
	ID      uint    `json:"id"`
	Metodo  string  `json:"metodo"`
	Detalle *string `json:"detalle,omitempty"`
	Activo  bool    `json:"activo"`
}

type ProveedorResponse struct {
	ID          uint                          `json:"id"`
	Nombre      string                        `json:"nombre"`
	NIT         *string                       `json:"nit"`
	Telefono    *string                       `json:"telefono"`
	Email       *string                       `json:"email"`
	Direccion   *string                       `json:"direccion"`
	Activo      bool                          `json:"activo"`
	Productos   []ProveedorProductoResponse   `json:"productos"`
	MetodosPago []MetodoPagoProveedorResponse `json:"metodos_pago"`
}

type PrecioPreviewItem struct {
	ProductoID   uint            `json:"producto_id"`
	Nombre       string          `json:"nombre"`
	PrecioActual decimal.Decimal `json:"precio_actual"`
	PrecioNuevo  decimal.Decimal `json:"precio_nuevo"`
	Diferencia   decimal.Decimal `json:"diferencia"`
}

type ActualizacionMasivaResponse struct {
	Proveedor          string              `json:"proveedor"`
	Porcentaje         decimal.Decimal     `json:"porcentaje"`
	ProductosAfectados int                 `json:"productos_afectados"`
	Preview            []PrecioPreviewItem `json:"preview,omitempty"`
}
