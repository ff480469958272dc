package service_test

import (
	"context"
	"testing"

	"github.com/Crissancio/Backend-Taller/internal/config"
	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/middleware"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "secreto-de-prueba"

type authFixture struct {
	usuarios *stubUsuarioRepo
	empresas *stubMicroempresaRepo
	svc      service.AuthService
	empresa  *model.Microempresa
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	af := &authFixture{usuarios: newStubUsuarioRepo(), empresas: newStubMicroempresaRepo()}
	af.svc = service.NewAuthService(af.usuarios, af.empresas, nil, &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    168,
	})
	af.empresa = &model.Microempresa{Nombre: "Libreria Central", NIT: "555111", Moneda: "BOB", Activo: true}
	require.NoError(t, af.empresas.CreateTx(nil, af.empresa))
	return af
}

func (af *authFixture) seedUsuario(t *testing.T, email, password, rol string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.Usuario{
		Nombre:       "Usuario " + rol,
		Email:        email,
		PasswordHash: string(hash),
		Rol:          rol,
		Activo:       true,
	}
	if rol != model.RolSuperadmin {
		mid := af.empresa.ID
		u.MicroempresaID = &mid
		emp := *af.empresa
		u.Microempresa = &emp
	}
	require.NoError(t, af.usuarios.Create(context.Background(), u))
	return u
}

func TestLogin_EmiteTokensValidos(t *testing.T) {
	af := newAuthFixture(t)
	u := af.seedUsuario(t, "vendedor@libreria.bo", "clave-segura", model.RolVendedor)

	resp, err := af.svc.Login(context.Background(), dto.LoginRequest{Email: "vendedor@libreria.bo", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)

	claims, err := middleware.ParseToken(testSecret, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, model.RolVendedor, claims.Rol)
	require.NotNil(t, claims.MicroempresaID)
	assert.Equal(t, af.empresa.ID, *claims.MicroempresaID)

	_, err = middleware.ParseToken(testSecret, resp.RefreshToken)
	assert.ErrorIs(t, err, middleware.ErrTokenInvalido, "refresh tokens never authenticate a request")
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	af := newAuthFixture(t)
	af.seedUsuario(t, "admin@libreria.bo", "clave-segura", model.RolAdmin)

	_, err := af.svc.Login(context.Background(), dto.LoginRequest{Email: "admin@libreria.bo", Password: "otra-clave"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = af.svc.Login(context.Background(), dto.LoginRequest{Email: "nadie@libreria.bo", Password: "clave-segura"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	af := newAuthFixture(t)
	u := af.seedUsuario(t, "ex@libreria.bo", "clave-segura", model.RolVendedor)
	af.usuarios.users[u.ID].Activo = false

	_, err := af.svc.Login(context.Background(), dto.LoginRequest{Email: "ex@libreria.bo", Password: "clave-segura"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}

func TestLogin_MicroempresaDesactivada(t *testing.T) {
	af := newAuthFixture(t)
	u := af.seedUsuario(t, "admin@libreria.bo", "clave-segura", model.RolAdmin)
	af.usuarios.users[u.ID].Microempresa.Activo = false

	_, err := af.svc.Login(context.Background(), dto.LoginRequest{Email: "admin@libreria.bo", Password: "clave-segura"})
	assert.ErrorIs(t, err, service.ErrPermisoDenegado)
}

func TestRefresh(t *testing.T) {
	af := newAuthFixture(t)
	af.seedUsuario(t, "admin@libreria.bo", "clave-segura", model.RolAdmin)
	login, err := af.svc.Login(context.Background(), dto.LoginRequest{Email: "admin@libreria.bo", Password: "clave-segura"})
	require.NoError(t, err)

	resp, err := af.svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	_, err = middleware.ParseToken(testSecret, resp.AccessToken)
	assert.NoError(t, err)

	_, err = af.svc.Refresh(context.Background(), login.AccessToken)
	assert.ErrorIs(t, err, service.ErrCredenciales, "an access token cannot be used to refresh")

	af.empresas.items[af.empresa.ID].Activo = false
	_, err = af.svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrPermisoDenegado)
}

func TestCrearUsuario_ReglasDeRol(t *testing.T) {
	af := newAuthFixture(t)
	admin := service.Alcance{UsuarioID: 50, Rol: model.RolAdmin, MicroempresaID: af.empresa.ID}
	super := service.Alcance{UsuarioID: 1, Rol: model.RolSuperadmin}

	_, err := af.svc.CrearUsuario(context.Background(), admin, dto.CrearUsuarioRequest{
		Nombre: "Intruso", Email: "root@libreria.bo", Password: "clave-segura", Rol: model.RolSuperadmin,
	})
	assert.ErrorIs(t, err, service.ErrPermisoDenegado)

	otra := af.empresa.ID + 1
	_, err = af.svc.CrearUsuario(context.Background(), admin, dto.CrearUsuarioRequest{
		Nombre: "Ajeno", Email: "ajeno@libreria.bo", Password: "clave-segura", Rol: model.RolVendedor, MicroempresaID: &otra,
	})
	assert.ErrorIs(t, err, service.ErrFueraDeAlcance)

	u, err := af.svc.CrearUsuario(context.Background(), admin, dto.CrearUsuarioRequest{
		Nombre: "Cajera", Email: " Cajera@Libreria.bo ", Password: "clave-segura", Rol: model.RolVendedor,
	})
	require.NoError(t, err)
	assert.Equal(t, "cajera@libreria.bo", u.Email)
	require.NotNil(t, u.MicroempresaID)
	assert.Equal(t, af.empresa.ID, *u.MicroempresaID)

	_, err = af.svc.CrearUsuario(context.Background(), super, dto.CrearUsuarioRequest{
		Nombre: "Duplicada", Email: "cajera@libreria.bo", Password: "clave-segura", Rol: model.RolAdmin, MicroempresaID: &af.empresa.ID,
	})
	assert.ErrorIs(t, err, service.ErrConflicto)

	_, err = af.svc.CrearUsuario(context.Background(), super, dto.CrearUsuarioRequest{
		Nombre: "Sin empresa", Email: "suelto@libreria.bo", Password: "clave-segura", Rol: model.RolAdmin,
	})
	assert.ErrorIs(t, err, service.ErrValidacion)
}

func TestDesactivarUsuario(t *testing.T) {
	af := newAuthFixture(t)
	admin := af.seedUsuario(t, "admin@libreria.bo", "clave-segura", model.RolAdmin)
	vendedor := af.seedUsuario(t, "vendedor@libreria.bo", "clave-segura", model.RolVendedor)
	alc := service.Alcance{UsuarioID: admin.ID, Rol: model.RolAdmin, MicroempresaID: af.empresa.ID}

	err := af.svc.DesactivarUsuario(context.Background(), alc, admin.ID)
	assert.ErrorIs(t, err, service.ErrValidacion)

	require.NoError(t, af.svc.DesactivarUsuario(context.Background(), alc, vendedor.ID))
	assert.False(t, af.usuarios.users[vendedor.ID].Activo)

	otra := service.Alcance{UsuarioID: 99, Rol: model.RolAdmin, MicroempresaID: af.empresa.ID + 1}
	err = af.svc.DesactivarUsuario(context.Background(), otra, admin.ID)
	assert.ErrorIs(t, err, service.ErrFueraDeAlcance)
}
