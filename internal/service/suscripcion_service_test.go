package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/config"
	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type suscripcionFixture struct {
	*fixture
	planes   *stubPlanRepo
	subs     *stubSuscripcionRepo
	usuarios *stubUsuarioRepo
	svc      service.SuscripcionService
}

func newSuscripcionFixture(t *testing.T) *suscripcionFixture {
	t.Helper()
	f := newFixture(t)
	sf := &suscripcionFixture{fixture: f, planes: newStubPlanRepo(), usuarios: newStubUsuarioRepo()}
	sf.subs = newStubSuscripcionRepo(sf.planes)
	sf.svc = service.NewSuscripcionService(sf.subs, sf.planes, f.empresas, sf.usuarios, f.productos, f.outbox)
	return sf
}

func (sf *suscripcionFixture) plan(t *testing.T, nombre string, productos, vendedores *int) *model.Plan {
	t.Helper()
	p := &model.Plan{Nombre: nombre, Precio: dec("30"), LimiteProductos: productos, LimiteVendedores: vendedores, Activo: true}
	require.NoError(t, sf.planes.Create(context.Background(), p))
	return p
}

func (sf *suscripcionFixture) suscribir(t *testing.T, planID uint) *dto.SuscripcionResponse {
	t.Helper()
	resp, err := sf.svc.Crear(context.Background(), superadmin, dto.CrearSuscripcionRequest{
		MicroempresaID: sf.empresa.ID,
		PlanID:         planID,
	})
	require.NoError(t, err)
	return resp
}

func TestSuscripcion_CrearDesactivaLaAnteriorYEmiteEvento(t *testing.T) {
	sf := newSuscripcionFixture(t)
	basico := sf.plan(t, "Basico", nil, nil)
	pro := sf.plan(t, "Pro", nil, nil)

	primera := sf.suscribir(t, basico.ID)
	assert.True(t, primera.Vigente)
	assert.WithinDuration(t, primera.FechaInicio.Add(model.DuracionSuscripcionDefecto), primera.FechaFin, time.Second)

	segunda := sf.suscribir(t, pro.ID)
	require.NotNil(t, segunda.Plan)
	assert.Equal(t, "Pro", segunda.Plan.Nombre)

	anterior, err := sf.svc.Obtener(context.Background(), superadmin, primera.ID)
	require.NoError(t, err)
	assert.False(t, anterior.Activa, "only one active subscription per business")
	assert.Equal(t, 2, sf.outbox.count(model.EventoSuscripcionCreada))

	vig, err := sf.svc.Vigente(context.Background(), sf.admin(), sf.empresa.ID)
	require.NoError(t, err)
	assert.Equal(t, segunda.ID, vig.ID)
}

func TestSuscripcion_CrearValidaciones(t *testing.T) {
	sf := newSuscripcionFixture(t)
	ctx := context.Background()
	inactivo := sf.plan(t, "Viejo", nil, nil)
	inactivo.Activo = false
	require.NoError(t, sf.planes.Update(ctx, inactivo))
	vigente := sf.plan(t, "Actual", nil, nil)

	_, err := sf.svc.Crear(ctx, sf.admin(), dto.CrearSuscripcionRequest{MicroempresaID: sf.empresa.ID, PlanID: vigente.ID})
	assert.ErrorIs(t, err, service.ErrPermisoDenegado)

	_, err = sf.svc.Crear(ctx, superadmin, dto.CrearSuscripcionRequest{MicroempresaID: sf.empresa.ID, PlanID: inactivo.ID})
	assert.ErrorIs(t, err, service.ErrValidacion)

	_, err = sf.svc.Crear(ctx, superadmin, dto.CrearSuscripcionRequest{MicroempresaID: 999, PlanID: vigente.ID})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)

	ayer := time.Now().Add(-24 * time.Hour)
	_, err = sf.svc.Crear(ctx, superadmin, dto.CrearSuscripcionRequest{MicroempresaID: sf.empresa.ID, PlanID: vigente.ID, FechaFin: &ayer})
	assert.ErrorIs(t, err, service.ErrValidacion)
	assert.Zero(t, sf.outbox.count(model.EventoSuscripcionCreada))
}

func TestSuscripcion_DarDeBajaQuitaLosLimites(t *testing.T) {
	sf := newSuscripcionFixture(t)
	ctx := context.Background()
	sus := sf.suscribir(t, sf.plan(t, "Cero", intPtr(0), nil).ID)
	assert.ErrorIs(t, sf.svc.VerificarProducto(ctx, sf.empresa.ID), service.ErrLimitePlan)

	resp, err := sf.svc.DarDeBaja(ctx, superadmin, sus.ID)
	require.NoError(t, err)
	assert.False(t, resp.Vigente)
	assert.NoError(t, sf.svc.VerificarProducto(ctx, sf.empresa.ID))

	_, err = sf.svc.Vigente(ctx, sf.admin(), sf.empresa.ID)
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

func TestSuscripcion_OtraMicroempresaFueraDeAlcance(t *testing.T) {
	sf := newSuscripcionFixture(t)
	sus := sf.suscribir(t, sf.plan(t, "Basico", nil, nil).ID)
	otra := service.Alcance{UsuarioID: 20, Rol: model.RolAdmin, MicroempresaID: sf.empresa.ID + 1}

	_, err := sf.svc.Obtener(context.Background(), otra, sus.ID)
	assert.ErrorIs(t, err, service.ErrFueraDeAlcance)
	list, err := sf.svc.Listar(context.Background(), otra, dto.SuscripcionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestLimitePlan_VendedoresEnCrearUsuario(t *testing.T) {
	sf := newSuscripcionFixture(t)
	ctx := context.Background()
	auth := service.NewAuthService(sf.usuarios, sf.empresas, sf.svc, &config.Config{JWTSecret: testSecret})

	nuevo := func(email string) error {
		_, err := auth.CrearUsuario(ctx, sf.admin(), dto.CrearUsuarioRequest{
			Nombre: "Vendedor", Email: email, Password: "clave-segura", Rol: model.RolVendedor,
		})
		return err
	}

	// Without a subscription in force the business is not capped.
	require.NoError(t, nuevo("v1@tienda.bo"))
	require.NoError(t, nuevo("v2@tienda.bo"))

	sf.suscribir(t, sf.plan(t, "Dos vendedores", nil, intPtr(2)).ID)
	err := nuevo("v3@tienda.bo")
	assert.ErrorIs(t, err, service.ErrLimitePlan)
	assert.ErrorIs(t, err, service.ErrConflicto)

	_, err = auth.CrearUsuario(ctx, sf.admin(), dto.CrearUsuarioRequest{
		Nombre: "Otro admin", Email: "a2@tienda.bo", Password: "clave-segura", Rol: model.RolAdmin,
	})
	assert.NoError(t, err, "the admin limit is unset")

	usuarios, err := sf.usuarios.List(ctx, nil)
	require.NoError(t, err)
	var ultimo uint
	for _, u := range usuarios {
		if u.Email == "v1@tienda.bo" {
			ultimo = u.ID
		}
	}
	require.NoError(t, auth.DesactivarUsuario(ctx, sf.admin(), ultimo))
	assert.NoError(t, nuevo("v3@tienda.bo"), "inactive users free their seat")
}

func TestLimitePlan_ProductosActivos(t *testing.T) {
	sf := newSuscripcionFixture(t)
	ctx := context.Background()
	categorias := &stubCategoriaRepo{items: make(map[uint]*model.Categoria)}
	require.NoError(t, categorias.Create(ctx, &model.Categoria{MicroempresaID: sf.empresa.ID, Nombre: "Bebidas", Activo: true}))
	productos := service.NewProductoService(sf.productos, categorias, sf.empresas, &stubHistorialRepo{}, sf.stockSvc, sf.svc, nil, 0)

	crear := func(nombre string) (*dto.ProductoResponse, error) {
		return productos.Crear(ctx, sf.admin(), dto.CrearProductoRequest{CategoriaID: 1, Nombre: nombre, PrecioVenta: dec("5")})
	}

	sf.suscribir(t, sf.plan(t, "Un producto", intPtr(1), nil).ID)
	agua, err := crear("Agua 2L")
	require.NoError(t, err)
	_, err = crear("Jugo 1L")
	assert.ErrorIs(t, err, service.ErrLimitePlan)

	require.NoError(t, productos.CambiarEstado(ctx, sf.admin(), agua.ID, false))
	jugo, err := crear("Jugo 1L")
	require.NoError(t, err)
	assert.ErrorIs(t, productos.CambiarEstado(ctx, sf.admin(), agua.ID, true), service.ErrLimitePlan,
		"reactivating counts against the plan too")

	vig, err := sf.svc.Vigente(ctx, sf.admin(), sf.empresa.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), vig.Uso.Productos)
	assert.NotZero(t, jugo.ID)
}
