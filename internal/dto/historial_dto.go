package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type HistorialPrecioFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=50" validate:"min=1,max=200"`
}

// HistorialPrecioItem is one row in the price-history list.
type HistorialPrecioItem struct {
	ID           uint             `json:"id"`
	ProductoID   uint             `json:"producto_id"`
	UsuarioID    *uint            `json:"usuario_id,omitempty"`
	CompraID     *uint            `json:"compra_id,omitempty"`
	CostoAntes   *decimal.Decimal `json:"costo_antes"`
	CostoDespues *decimal.Decimal `json:"costo_despues"`
	VentaAntes   decimal.Decimal  `json:"venta_antes"`
	VentaDespues decimal.Decimal  `json:"venta_despues"`
	Motivo       string           `json:"motivo"`
	Fecha        time.Time        `json:"fecha"`
}

// HistorialPrecioListResponse is returned by GET /v1/productos/:id/historial-precios.
type HistorialPrecioListResponse struct {
	Data  []HistorialPrecioItem `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
