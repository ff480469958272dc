package dto

import "time"

type AjusteStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3,max=255"`
}

type ConfigurarStockRequest struct {
	StockMinimo int `json:"stock_minimo" validate:"min=0"`
}

type StockInicialRequest struct {
	Cantidad int `json:"cantidad" validate:"required,gt=0"`
}

type StockFilter struct {
	SoloBajoMinimo bool `form:"bajo_minimo"`
}

type MovimientoFilter struct {
	ProductoID uint `form:"producto_id"`
	Page       int  `form:"page,default=1"   validate:"min=1"`
	Limit      int  `form:"limit,default=50" validate:"min=1,max=200"`
}

type StockResponse struct {
	ProductoID          uint      `json:"producto_id"`
	Producto            string    `json:"producto"`
	Cantidad            int       `json:"cantidad"`
	Reservado           int       `json:"reservado"`
	Disponible          int       `json:"disponible"`
	StockMinimo         int       `json:"stock_minimo"`
	BajoMinimo          bool      `json:"bajo_minimo"`
	UltimaActualizacion time.Time `json:"ultima_actualizacion"`
}

type MovimientoStockResponse struct {
	ID            uint      `json:"id"`
	ProductoID    uint      `json:"producto_id"`
	Producto      string    `json:"producto"`
	Tipo          string    `json:"tipo"`
	Cantidad      int       `json:"cantidad"`
	StockAnterior int       `json:"stock_anterior"`
	StockNuevo    int       `json:"stock_nuevo"`
	Motivo        string    `json:"motivo"`
	ReferenciaID  *uint     `json:"referencia_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoStockResponse `json:"data"`
	Total int64                     `json:"total"`
	Page  int                       `json:"page"`
	Limit int                       `json:"limit"`
}
