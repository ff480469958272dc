package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	CategoriaID uint             `json:"categoria_id" validate:"required,min=1"`
	Nombre      string           `json:"nombre"       validate:"required,min=2,max=150"`
	Codigo      *string          `json:"codigo"       validate:"omitempty,max=50"`
	Descripcion *string          `json:"descripcion"`
	PrecioVenta decimal.Decimal  `json:"precio_venta" validate:"required,gt=0"`
	CostoCompra *decimal.Decimal `json:"costo_compra"`
	StockMinimo int              `json:"stock_minimo" validate:"min=0"`
}

type ActualizarProductoRequest struct {
	CategoriaID *uint            `json:"categoria_id" validate:"omitempty,min=1"`
	Nombre      *string          `json:"nombre"       validate:"omitempty,min=2,max=150"`
	Codigo      *string          `json:"codigo"       validate:"omitempty,max=50"`
	Descripcion *string          `json:"descripcion"`
	PrecioVenta *decimal.Decimal `json:"precio_venta"`
	CostoCompra *decimal.Decimal `json:"costo_compra"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	CategoriaID      uint   `form:"categoria_id"`
	Busqueda         string `form:"q"`
	IncluirInactivos bool   `form:"incluir_inactivos"`
	Page             int    `form:"page,default=1"   validate:"min=1"`
	Limit            int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          uint             `json:"id"`
	CategoriaID uint             `json:"categoria_id"`
	Categoria   string           `json:"categoria"`
	Nombre      string           `json:"nombre"`
	Codigo      *string          `json:"codigo"`
	Descripcion *string          `json:"descripcion"`
	PrecioVenta decimal.Decimal  `json:"precio_venta"`
	CostoCompra *decimal.Decimal `json:"costo_compra"`
	Stock       int              `json:"stock"`
	Disponible  int              `json:"disponible"`
	StockMinimo int              `json:"stock_minimo"`
	Activo      bool             `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// CatalogoItem is served by the public catalog (no auth required).
type CatalogoItem struct {
	ID          uint            `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion"`
	Categoria   string          `json:"categoria"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	Disponible  int             `json:"disponible"`
}

type CatalogoResponse struct {
	MicroempresaID uint           `json:"microempresa_id"`
	Microempresa   string         `json:"microempresa"`
	Moneda         string         `json:"moneda"`
	Productos      []CatalogoItem `json:"productos"`
}
