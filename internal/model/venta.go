package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	VentaPendientePago = "PENDIENTE_PAGO"
	VentaPagada        = "PAGADA"
	VentaCancelada     = "CANCELADA"

	VentaPresencial = "PRESENCIAL"
	VentaOnline     = "ONLINE"

	PagoPendiente = "PENDIENTE"
	PagoValidado  = "VALIDADO"
	PagoRechazado = "RECHAZADO"
)

// Venta is a sale. Presencial sales are born PAGADA; online sales start
// PENDIENTE_PAGO and hold a stock reservation until validated or rejected.
type Venta struct {
	ID             uint            `gorm:"primaryKey"`
	MicroempresaID uint            `gorm:"not null;index"`
	ClienteID      *uint           `gorm:"index"`
	UsuarioID      *uint           `gorm:"index"`
	Fecha          time.Time       `gorm:"not null;index"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado         string          `gorm:"type:varchar(20);not null;index"`
	Tipo           string          `gorm:"type:varchar(20);not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Cliente  *Cliente       `gorm:"foreignKey:ClienteID"`
	Usuario  *Usuario       `gorm:"foreignKey:UsuarioID"`
	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
	Pagos    []PagoVenta    `gorm:"foreignKey:VentaID"`
}

// UltimoPago returns the most recent payment record, or nil.
func (v *Venta) UltimoPago() *PagoVenta {
	var last *PagoVenta
	for i := range v.Pagos {
		p := &v.Pagos[i]
		if last == nil || p.Fecha.After(last.Fecha) || (p.Fecha.Equal(last.Fecha) && p.ID > last.ID) {
			last = p
		}
	}
	return last
}

type DetalleVenta struct {
	ID             uint            `gorm:"primaryKey"`
	VentaID        uint            `gorm:"not null;index"`
	ProductoID     uint            `gorm:"not null;index"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (DetalleVenta) TableName() string { return "detalles_venta" }

type PagoVenta struct {
	ID             uint    `gorm:"primaryKey"`
	VentaID        uint    `gorm:"not null;index"`
	Metodo         string  `gorm:"type:varchar(30);not null"`
	ComprobanteURL *string `gorm:"type:text"`
	Estado         string  `gorm:"type:varchar(20);not null"`
	Fecha          time.Time
}

func (PagoVenta) TableName() string { return "pagos_venta" }
