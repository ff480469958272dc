package dto

import "time"

type NotificacionFilter struct {
	SoloNoLeidas bool `form:"no_leidas"`
	Limit        int  `form:"limit,default=50" validate:"min=1,max=200"`
}

type NotificacionResponse struct {
	ID           uint      `json:"id"`
	Tipo         string    `json:"tipo"`
	Canal        string    `json:"canal"`
	Mensaje      string    `json:"mensaje"`
	ReferenciaID *uint     `json:"referencia_id"`
	Leido        bool      `json:"leido"`
	Fecha        time.Time `json:"fecha"`
}

type PreferenciaRequest struct {
	TipoEvento   string `json:"tipo_evento"   validate:"required,oneof=STOCK_BAJO STOCK_AGOTADO VENTA_REGISTRADA VENTA_ONLINE_CREADA PAGO_VENTA_CONFIRMADO VENTA_CANCELADA COMPRA_FINALIZADA SUSCRIPCION_CREADA"`
	RecibirApp   *bool  `json:"recibir_app"   validate:"required"`
	RecibirEmail *bool  `json:"recibir_email" validate:"required"`
}

type PreferenciaResponse struct {
	TipoEvento   string `json:"tipo_evento"`
	RecibirApp   bool   `json:"recibir_app"`
	RecibirEmail bool   `json:"recibir_email"`
}

// NotificacionPush is the JSON frame written to live WebSocket connections.
type NotificacionPush struct {
	ID           uint      `json:"id"`
	Tipo         string    `json:"tipo"`
	Mensaje      string    `json:"mensaje"`
	ReferenciaID *uint     `json:"referencia_id"`
	Fecha        time.Time `json:"fecha"`
}
