package model

import "time"

// DuracionSuscripcionDefecto applies when a subscription is created without
// an explicit end date.
const DuracionSuscripcionDefecto = 30 * 24 * time.Hour

// Suscripcion binds a microempresa to a plan for a period. At most one
// subscription per business is active at a time.
type Suscripcion struct {
	ID             uint      `gorm:"primaryKey"`
	MicroempresaID uint      `gorm:"not null;index"`
	PlanID         uint      `gorm:"not null;index"`
	FechaInicio    time.Time `gorm:"not null"`
	FechaFin       time.Time `gorm:"not null;index"`
	Activa         bool      `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Plan *Plan `gorm:"foreignKey:PlanID"`
}

func (Suscripcion) TableName() string { return "suscripciones" }

// Vigente reports whether the subscription grants its plan at now.
func (s *Suscripcion) Vigente(now time.Time) bool {
	return s.Activa && !now.Before(s.FechaInicio) && now.Before(s.FechaFin)
}
