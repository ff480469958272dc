package model

import "time"

// Microempresa is the tenant. Every catalog, stock, sale and purchase row
// carries its MicroempresaID.
type Microempresa struct {
	ID        uint    `gorm:"primaryKey"`
	Nombre    string  `gorm:"type:varchar(150);not null"`
	NIT       string  `gorm:"column:nit;type:varchar(30);uniqueIndex;not null"`
	Rubro     string  `gorm:"type:varchar(80)"`
	Moneda    string  `gorm:"type:char(3);not null;default:'BOB'"`
	Email     *string `gorm:"type:varchar(150)"`
	Telefono  *string `gorm:"type:varchar(30)"`
	Direccion *string `gorm:"type:text"`
	Activo    bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Microempresa) TableName() string { return "microempresas" }
