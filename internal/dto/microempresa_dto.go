package dto

import "time"

type AdminInicialRequest struct {
	Nombre   string `json:"nombre"   validate:"required,min=2,max=120"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type CrearMicroempresaRequest struct {
	Nombre    string               `json:"nombre"    validate:"required,min=2,max=150"`
	NIT       string               `json:"nit"       validate:"required,min=3,max=30"`
	Rubro     string               `json:"rubro"     validate:"max=80"`
	Moneda    string               `json:"moneda"    validate:"omitempty,len=3"`
	Email     *string              `json:"email"     validate:"omitempty,email"`
	Telefono  *string              `json:"telefono"  validate:"omitempty,max=30"`
	Direccion *string              `json:"direccion"`
	Admin     *AdminInicialRequest `json:"admin"`
}

type ActualizarMicroempresaRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=150"`
	Rubro     *string `json:"rubro"     validate:"omitempty,max=80"`
	Moneda    *string `json:"moneda"    validate:"omitempty,len=3"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Telefono  *string `json:"telefono"  validate:"omitempty,max=30"`
	Direccion *string `json:"direccion"`
}

// EstadoRequest toggles the activo flag of a microempresa, a producto or a plan.
type EstadoRequest struct {
	Activo *bool `json:"activo" validate:"required"`
}

type MicroempresaResponse struct {
	ID        uint             `json:"id"`
	Nombre    string           `json:"nombre"`
	NIT       string           `json:"nit"`
	Rubro     string           `json:"rubro"`
	Moneda    string           `json:"moneda"`
	Email     *string          `json:"email"`
	Telefono  *string          `json:"telefono"`
	Direccion *string          `json:"direccion"`
	Activo    bool             `json:"activo"`
	CreatedAt time.Time        `json:"created_at"`
	Admin     *UsuarioResponse `json:"admin,omitempty"`
}
