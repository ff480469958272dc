package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Proveedor struct {
	ID             uint    `gorm:"primaryKey"`
	MicroempresaID uint    `gorm:"not null;index"`
	Nombre         string  `gorm:"type:varchar(150);not null"`
	NIT            *string `gorm:"column:nit;type:varchar(30)"`
	Telefono       *string `gorm:"type:varchar(30)"`
	Email          *string `gorm:"type:varchar(150)"`
	Direccion      *string `gorm:"type:text"`
	Activo         bool    `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Productos   []ProveedorProducto   `gorm:"foreignKey:ProveedorID"`
	MetodosPago []ProveedorMetodoPago `gorm:"foreignKey:ProveedorID"`
}

// TableName overrides GORM's default pluralization (proveedors → proveedores).
func (Proveedor) TableName() string { return "proveedores" }

// ProveedorProducto records that a supplier sells a product of the same business.
type ProveedorProducto struct {
	ID               uint             `gorm:"primaryKey"`
	ProveedorID      uint             `gorm:"not null;uniqueIndex:idx_proveedor_producto"`
	ProductoID       uint             `gorm:"not null;uniqueIndex:idx_proveedor_producto"`
	PrecioReferencia *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Activo           bool             `gorm:"not null;default:true"`
	CreatedAt        time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (ProveedorProducto) TableName() string { return "proveedor_productos" }

type ProveedorMetodoPago struct {
	ID          uint    `gorm:"primaryKey"`
	ProveedorID uint    `gorm:"not null;index"`
	Metodo      string  `gorm:"type:varchar(30);not null"`
	Detalle     *string `gorm:"type:text"`
	Activo      bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
}

func (ProveedorMetodoPago) TableName() string { return "proveedor_metodos_pago" }
