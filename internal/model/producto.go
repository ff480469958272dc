package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Producto struct {
	ID             uint             `gorm:"primaryKey"`
	MicroempresaID uint             `gorm:"not null;index"`
	CategoriaID    uint             `gorm:"not null;index"`
	Nombre         string           `gorm:"type:varchar(150);not null"`
	Codigo         *string          `gorm:"type:varchar(50);index"`
	Descripcion    *string          `gorm:"type:text"`
	PrecioVenta    decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CostoCompra    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Activo         bool             `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Categoria *Categoria `gorm:"foreignKey:CategoriaID"`
	Stock     *Stock     `gorm:"foreignKey:ProductoID"`
}
