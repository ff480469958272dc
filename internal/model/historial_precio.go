package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MotivoPrecioManual = "manual"
	MotivoPrecioCompra = "compra"
)

// HistorialPrecio records one change of a product's sale price or purchase
// cost. Rows are append-only.
type HistorialPrecio struct {
	ID             uint             `gorm:"primaryKey"`
	MicroempresaID uint             `gorm:"not null;index"`
	ProductoID     uint             `gorm:"not null;index"`
	UsuarioID      *uint            `gorm:"index"`
	CompraID       *uint            `gorm:"index"`
	CostoAntes     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CostoDespues   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	VentaAntes     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	VentaDespues   decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Motivo         string           `gorm:"type:varchar(20);not null;default:'manual'"` // manual | compra
	CreatedAt      time.Time
}

func (HistorialPrecio) TableName() string { return "historial_precios" }
