package model

import "time"

const (
	MovimientoVenta        = "venta"
	MovimientoCompra       = "compra"
	MovimientoAjusteManual = "ajuste_manual"
	MovimientoStockInicial = "stock_inicial"
)

// MovimientoStock registra cada cambio de stock en un producto.
// Cantidad is the delta actually applied, after clamping at zero.
type MovimientoStock struct {
	ID             uint   `gorm:"primaryKey"`
	ProductoID     uint   `gorm:"not null;index"`
	MicroempresaID uint   `gorm:"not null;index"`
	Tipo           string `gorm:"type:varchar(30);not null"`
	Cantidad       int    `gorm:"not null"`
	StockAnterior  int    `gorm:"not null"`
	StockNuevo     int    `gorm:"not null"`
	Motivo         string
	ReferenciaID   *uint
	CreatedAt      time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// TableName overrides GORM's default pluralization (movimiento_stocks → movimientos_stock).
func (MovimientoStock) TableName() string { return "movimientos_stock" }
