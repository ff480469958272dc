package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a commercial tier a microempresa subscribes to. A nil limit means
// the plan does not restrict that resource.
type Plan struct {
	ID               uint            `gorm:"primaryKey"`
	Nombre           string          `gorm:"type:varchar(80);uniqueIndex;not null"`
	Precio           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LimiteProductos  *int
	LimiteAdmins     *int
	LimiteVendedores *int
	Descripcion      *string `gorm:"type:text"`
	Activo           bool    `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Plan) TableName() string { return "planes" }

// LimiteRol returns the user limit that applies to rol, or nil.
func (p *Plan) LimiteRol(rol string) *int {
	switch rol {
	case RolAdmin:
		return p.LimiteAdmins
	case RolVendedor:
		return p.LimiteVendedores
	}
	return nil
}
