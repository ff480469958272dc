package model

import (
	"time"

	"github.com/google/uuid"
)

// Domain event types carried by the outbox.
const (
	EventoStockBajo           = "STOCK_BAJO"
	EventoStockAgotado        = "STOCK_AGOTADO"
	EventoVentaRegistrada     = "VENTA_REGISTRADA"
	EventoVentaOnlineCreada   = "VENTA_ONLINE_CREADA"
	EventoPagoVentaConfirmado = "PAGO_VENTA_CONFIRMADO"
	EventoVentaCancelada      = "VENTA_CANCELADA"
	EventoCompraFinalizada    = "COMPRA_FINALIZADA"
	EventoSuscripcionCreada   = "SUSCRIPCION_CREADA"
)

// TiposEvento lists every event a user can configure preferences for.
var TiposEvento = []string{
	EventoStockBajo,
	EventoStockAgotado,
	EventoVentaRegistrada,
	EventoVentaOnlineCreada,
	EventoPagoVentaConfirmado,
	EventoVentaCancelada,
	EventoCompraFinalizada,
	EventoSuscripcionCreada,
}

const (
	OutboxPendiente  = "PENDIENTE"
	OutboxDespachado = "DESPACHADO"
	OutboxFallido    = "FALLIDO"
)

// EventoOutbox is written in the same transaction as the state change it
// describes; the relay drains it into the notification queue.
type EventoOutbox struct {
	ID             uint      `gorm:"primaryKey"`
	EventoID       uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	MicroempresaID uint      `gorm:"not null;index"`
	Tipo           string    `gorm:"type:varchar(40);not null"`
	ReferenciaID   *uint
	Mensaje        string    `gorm:"type:text;not null"`
	Payload        string    `gorm:"type:jsonb;not null;default:'{}'"`
	Estado         string    `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	Intentos       int       `gorm:"not null;default:0"`
	UltimoError    *string   `gorm:"type:text"`
	ProximoIntento time.Time `gorm:"not null;index"`
	DespachadoAt   *time.Time
	CreatedAt      time.Time
}

func (EventoOutbox) TableName() string { return "eventos_outbox" }
