package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=4"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CrearUsuarioRequest: MicroempresaID is only honoured for superadmin callers;
// admins always create users inside their own business.
type CrearUsuarioRequest struct {
	Nombre         string `json:"nombre"          validate:"required,min=2,max=120"`
	Email          string `json:"email"           validate:"required,email"`
	Password       string `json:"password"        validate:"required,min=8"`
	Rol            string `json:"rol"             validate:"required,oneof=superadmin admin vendedor"`
	MicroempresaID *uint  `json:"microempresa_id" validate:"omitempty,min=1"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UsuarioResponse struct {
	ID             uint   `json:"id"`
	MicroempresaID *uint  `json:"microempresa_id"`
	Nombre         string `json:"nombre"`
	Email          string `json:"email"`
	Rol            string `json:"rol"`
	Activo         bool   `json:"activo"`
}

type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // seconds
	User         UsuarioResponse `json:"user"`
}
