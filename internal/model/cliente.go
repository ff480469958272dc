package model

import "time"

// Cliente is a customer of one business. Online checkout finds or creates
// customers by telefono, so it is unique per business.
type Cliente struct {
	ID             uint    `gorm:"primaryKey"`
	MicroempresaID uint    `gorm:"not null;uniqueIndex:idx_cliente_empresa_telefono"`
	Nombre         string  `gorm:"type:varchar(150);not null"`
	Documento      *string `gorm:"type:varchar(30)"`
	Telefono       string  `gorm:"type:varchar(30);not null;uniqueIndex:idx_cliente_empresa_telefono"`
	Email          *string `gorm:"type:varchar(150)"`
	Activo         bool    `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
