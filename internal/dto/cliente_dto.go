package dto

type CrearClienteRequest struct {
	Nombre    string  `json:"nombre"    validate:"required,min=2,max=150"`
	Telefono  string  `json:"telefono"  validate:"required,min=6,max=30"`
	Documento *string `json:"documento" validate:"omitempty,max=30"`
	Email     *string `json:"email"     validate:"omitempty,email"`
}

type ActualizarClienteRequest struct {
	Nombre    *string `json:"nombre"    validate:"omitempty,min=2,max=150"`
	Telefono  *string `json:"telefono"  validate:"omitempty,min=6,max=30"`
	Documento *string `json:"documento" validate:"omitempty,max=30"`
	Email     *string `json:"email"     validate:"omitempty,email"`
	Activo    *bool   `json:"activo"`
}

type ClienteFilter struct {
	Busqueda string `form:"q"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ClienteResponse struct {
	ID        uint    `json:"id"`
	Nombre    string  `json:"nombre"`
	Telefono  string  `json:"telefono"`
	Documento *string `json:"documento"`
	Email     *string `json:"email"`
	Activo    bool    `json:"activo"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
