package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CompraRegistrada = "REGISTRADA"
	CompraConfirmada = "CONFIRMADA"
	CompraPagada     = "PAGADA"
	CompraAnulada    = "ANULADA"
)

// Compra is a purchase from a supplier. Stock only enters on Finalizar.
type Compra struct {
	ID             uint            `gorm:"primaryKey"`
	MicroempresaID uint            `gorm:"not null;index"`
	ProveedorID    uint            `gorm:"not null;index"`
	UsuarioID      *uint           `gorm:"index"`
	Fecha          time.Time       `gorm:"not null;index"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado         string          `gorm:"type:varchar(20);not null;index"`
	Observacion    *string         `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Proveedor *Proveedor      `gorm:"foreignKey:ProveedorID"`
	Detalles  []DetalleCompra `gorm:"foreignKey:CompraID"`
	Pagos     []PagoCompra    `gorm:"foreignKey:CompraID"`
}

type DetalleCompra struct {
	ID            uint            `gorm:"primaryKey"`
	CompraID      uint            `gorm:"not null;index"`
	ProductoID    uint            `gorm:"not null;index"`
	Cantidad      int             `gorm:"not null"`
	CostoUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleCompra) TableName() string { return "detalles_compra" }

type PagoCompra struct {
	ID           uint            `gorm:"primaryKey"`
	CompraID     uint            `gorm:"not null;index"`
	MetodoPagoID uint            `gorm:"not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Referencia   *string         `gorm:"type:varchar(120)"`
	Fecha        time.Time

	MetodoPago *ProveedorMetodoPago `gorm:"foreignKey:MetodoPagoID"`
}

func (PagoCompra) TableName() string { return "pagos_compra" }
