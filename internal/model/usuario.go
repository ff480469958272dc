package model

import "time"

const (
	RolSuperadmin = "superadmin"
	RolAdmin      = "admin"
	RolVendedor   = "vendedor"
)

// Usuario stores system users with role-based access.
// Superadmins have no MicroempresaID; every other role is bound to one business.
type Usuario struct {
	ID             uint   `gorm:"primaryKey"`
	MicroempresaID *uint  `gorm:"index"`
	Nombre         string `gorm:"type:varchar(120);not null"`
	Email          string `gorm:"type:varchar(150);uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	Rol            string `gorm:"type:varchar(20);not null"`
	Activo         bool   `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Microempresa *Microempresa `gorm:"foreignKey:MicroempresaID"`
}
