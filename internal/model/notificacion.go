package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	CanalInApp = "IN_APP"
	CanalEmail = "EMAIL"
)

type Notificacion struct {
	ID             uint      `gorm:"primaryKey"`
	MicroempresaID uint      `gorm:"not null;index"`
	UsuarioID      uint      `gorm:"not null;index"`
	EventoID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo           string    `gorm:"type:varchar(40);not null"`
	Canal          string    `gorm:"type:varchar(20);not null"`
	Mensaje        string    `gorm:"type:text;not null"`
	ReferenciaID   *uint
	Leido          bool `gorm:"not null;default:false"`
	Encolado       bool `gorm:"not null;default:false"`
	Enviado        bool `gorm:"not null;default:false"`
	Fecha          time.Time
}

func (Notificacion) TableName() string { return "notificaciones" }

// PreferenciaNotificacion overrides the default channels of one user for one
// event type. Missing rows mean in-app only.
type PreferenciaNotificacion struct {
	ID           uint   `gorm:"primaryKey"`
	UsuarioID    uint   `gorm:"not null;uniqueIndex:idx_pref_usuario_tipo"`
	TipoEvento   string `gorm:"type:varchar(40);not null;uniqueIndex:idx_pref_usuario_tipo"`
	RecibirApp   bool   `gorm:"not null;default:true"`
	RecibirEmail bool   `gorm:"not null;default:false"`
	UpdatedAt    time.Time
}

func (PreferenciaNotificacion) TableName() string { return "preferencias_notificacion" }
