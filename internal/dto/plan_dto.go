package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Planes ──────────────────────────────────────────────────────────────────

// PlanRequest creates or replaces a plan. A missing limit means unlimited.
type PlanRequest struct {
	Nombre           string          `json:"nombre"            validate:"required,min=2,max=80"`
	Precio           decimal.Decimal `json:"precio"            validate:"min=0"`
	LimiteProductos  *int            `json:"limite_productos"  validate:"omitempty,min=0"`
	LimiteAdmins     *int            `json:"limite_admins"     validate:"omitempty,min=0"`
	LimiteVendedores *int            `json:"limite_vendedores" validate:"omitempty,min=0"`
	Descripcion      *string         `json:"descripcion"`
}

type PlanFilter struct {
	Activo *bool `form:"activo"`
}

type PlanResponse struct {
	ID               uint            `json:"id"`
	Nombre           string          `json:"nombre"`
	Precio           decimal.Decimal `json:"precio"`
	LimiteProductos  *int            `json:"limite_productos"`
	LimiteAdmins     *int            `json:"limite_admins"`
	LimiteVendedores *int            `json:"limite_vendedores"`
	Descripcion      *string         `json:"descripcion"`
	Activo           bool            `json:"activo"`
}

// ─── Suscripciones ───────────────────────────────────────────────────────────

type CrearSuscripcionRequest struct {
	MicroempresaID uint       `json:"microempresa_id" validate:"required"`
	PlanID         uint       `json:"plan_id"         validate:"required"`
	FechaFin       *time.Time `json:"fecha_fin"`
}

type ActualizarSuscripcionRequest struct {
	PlanID   *uint      `json:"plan_id"   validate:"omitempty,min=1"`
	FechaFin *time.Time `json:"fecha_fin"`
}

type SuscripcionFilter struct {
	MicroempresaID *uint `form:"microempresa_id"`
}

type SuscripcionResponse struct {
	ID             uint          `json:"id"`
	MicroempresaID uint          `json:"microempresa_id"`
	PlanID         uint          `json:"plan_id"`
	FechaInicio    time.Time     `json:"fecha_inicio"`
	FechaFin       time.Time     `json:"fecha_fin"`
	Activa         bool          `json:"activa"`
	Vigente        bool          `json:"vigente"`
	Plan           *PlanResponse `json:"plan,omitempty"`
}

// UsoPlan is the consumption of a business against its plan limits.
type UsoPlan struct {
	Productos  int64 `json:"productos"`
	Admins     int64 `json:"admins"`
	Vendedores int64 `json:"vendedores"`
}

type SuscripcionVigenteResponse struct {
	SuscripcionResponse
	Uso UsoPlan `json:"uso"`
}
