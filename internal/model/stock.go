package model

import "time"

// Stock is the single per-product inventory record.
// Cantidad is on-hand; Reservado is held by online sales awaiting payment.
type Stock struct {
	ID                  uint `gorm:"primaryKey"`
	ProductoID          uint `gorm:"not null;uniqueIndex"`
	MicroempresaID      uint `gorm:"not null;index"`
	Cantidad            int  `gorm:"not null;default:0;check:chk_stock_cantidad,cantidad >= 0"`
	Reservado           int  `gorm:"not null;default:0;check:chk_stock_reservado,reservado >= 0"`
	StockMinimo         int  `gorm:"not null;default:0"`
	UltimaActualizacion time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (Stock) TableName() string { return "stock" }

// Disponible is the quantity that a new sale may still take.
func (s Stock) Disponible() int {
	if d := s.Cantidad - s.Reservado; d > 0 {
		return d
	}
	return 0
}

// BajoMinimo reports whether the on-hand quantity is at or under the threshold.
func (s Stock) BajoMinimo() bool { return s.Cantidad <= s.StockMinimo }
