package model

import "time"

// Categoria groups products of one business. Names are unique per business.
type Categoria struct {
	ID             uint    `gorm:"primaryKey"`
	MicroempresaID uint    `gorm:"not null;uniqueIndex:idx_categoria_empresa_nombre"`
	Nombre         string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_categoria_empresa_nombre"`
	Descripcion    *string `gorm:"type:text"`
	Activo         bool    `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
