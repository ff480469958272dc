//go:build integration

package router_test

// End-to-end tests against real Postgres and Redis started with testcontainers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Crissancio/Backend-Taller/internal/config"
	"github.com/Crissancio/Backend-Taller/internal/infra"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/router"
	"github.com/Crissancio/Backend-Taller/internal/worker"
	"github.com/Crissancio/Backend-Taller/internal/ws"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		buf = jsonBody(t, body)
	} else {
		buf = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, srv.URL+path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func expect(t *testing.T, resp *http.Response, status int, dest any) {
	t.Helper()
	if resp.StatusCode != status {
		var body map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		require.Failf(t, "unexpected status", "want %d got %d: %v", status, resp.StatusCode, body)
	}
	if dest == nil {
		resp.Body.Close()
		return
	}
	decodeJSON(t, resp, dest)
}

type idBody struct {
	ID uint `json:"id"`
}

// ── Suite setup ──────────────────────────────────────────────────────────────

type testEnv struct {
	server  *httptest.Server
	db      *gorm.DB
	rdb     *redis.Client
	svc     *router.Services
	super   string
	admin   string
	empresa uint
}

func login(t *testing.T, srv *httptest.Server, email, password string) string {
	t.Helper()
	var body struct {
		AccessToken string `json:"access_token"`
	}
	expect(t, do(t, srv, http.MethodPost, "/v1/auth/login", map[string]string{"email": email, "password": password}, ""),
		http.StatusOK, &body)
	require.NotEmpty(t, body.AccessToken)
	return body.AccessToken
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcPostgres.WithDatabase("microerp_test"),
		tcPostgres.WithUsername("microerp"),
		tcPostgres.WithPassword("microerp"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                 8000,
		Env:                  "test",
		JWTSecret:            "e2e-secret",
		JWTExpirationHours:   8,
		JWTRefreshHours:      24,
		DatabaseURL:          pgURL,
		RedisURL:             rdURL,
		WorkerPoolSize:       1,
		ReservaTTLHoras:      24,
		CatalogoCacheSeconds: 60,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("super-clave-2026"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Usuario{
		Nombre: "Superadmin E2E", Email: "super@e2e.test", PasswordHash: string(hash), Rol: model.RolSuperadmin, Activo: true,
	}).Error)

	hub := ws.NewHub()
	go hub.Run(ctx)
	svc := router.NewServices(cfg, db, rdb)
	srv := httptest.NewServer(router.New(ctx, cfg, db, rdb, hub, svc))
	t.Cleanup(srv.Close)

	env := &testEnv{server: srv, db: db, rdb: rdb, svc: svc}
	env.super = login(t, srv, "super@e2e.test", "super-clave-2026")

	var emp idBody
	expect(t, do(t, srv, http.MethodPost, "/v1/microempresas", map[string]any{
		"nombre": "Minimarket E2E",
		"nit":    "100200300",
		"admin":  map[string]string{"nombre": "Admin E2E", "email": "admin@e2e.test", "password": "admin-clave-2026"},
	}, env.super), http.StatusCreated, &emp)
	env.empresa = emp.ID
	env.admin = login(t, srv, "admin@e2e.test", "admin-clave-2026")
	return env
}

// seedProducto creates a category, a product and its initial stock.
func (env *testEnv) seedProducto(t *testing.T, nombre string, precio float64, cantidad, minimo int) uint {
	t.Helper()
	var cat idBody
	expect(t, do(t, env.server, http.MethodPost, "/v1/categorias", map[string]any{"nombre": "Cat " + nombre}, env.admin),
		http.StatusCreated, &cat)
	var prod idBody
	expect(t, do(t, env.server, http.MethodPost, "/v1/productos", map[string]any{
		"categoria_id": cat.ID, "nombre": nombre, "precio_venta": precio, "stock_minimo": minimo,
	}, env.admin), http.StatusCreated, &prod)
	if cantidad > 0 {
		expect(t, do(t, env.server, http.MethodPost, fmt.Sprintf("/v1/inventario/%d/inicial", prod.ID),
			map[string]any{"cantidad": cantidad}, env.admin), http.StatusCreated, nil)
	}
	return prod.ID
}

type stockBody struct {
	Cantidad   int  `json:"cantidad"`
	Reservado  int  `json:"reservado"`
	Disponible int  `json:"disponible"`
	BajoMinimo bool `json:"bajo_minimo"`
}

func (env *testEnv) stock(t *testing.T, productoID uint) stockBody {
	t.Helper()
	var s stockBody
	expect(t, do(t, env.server, http.MethodGet, fmt.Sprintf("/v1/inventario/%d", productoID), nil, env.admin), http.StatusOK, &s)
	return s
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_VentaPresencialDescuentaStock(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.seedProducto(t, "Gaseosa 2L", 15, 10, 3)

	var venta struct {
		ID     uint   `json:"id"`
		Estado string `json:"estado"`
		Total  string `json:"total"`
	}
	expect(t, do(t, env.server, http.MethodPost, "/v1/ventas", map[string]any{
		"items":       []map[string]any{{"producto_id": prod, "cantidad": 8}},
		"metodo_pago": "EFECTIVO",
	}, env.admin), http.StatusCreated, &venta)
	assert.Equal(t, model.VentaPagada, venta.Estado)
	assert.Equal(t, "120", venta.Total)

	s := env.stock(t, prod)
	assert.Equal(t, 2, s.Cantidad)
	assert.True(t, s.BajoMinimo)

	// Not enough stock: nothing is written.
	var stockErr struct {
		Faltantes []struct {
			Disponible int `json:"disponible"`
		} `json:"faltantes"`
	}
	expect(t, do(t, env.server, http.MethodPost, "/v1/ventas", map[string]any{
		"items": []map[string]any{{"producto_id": prod, "cantidad": 3}},
	}, env.admin), http.StatusConflict, &stockErr)
	require.Len(t, stockErr.Faltantes, 1)
	assert.Equal(t, 2, stockErr.Faltantes[0].Disponible)
	assert.Equal(t, 2, env.stock(t, prod).Cantidad)

	// The outbox rows reach the notification queue through the relay.
	relay := worker.NewOutboxRelay(worker.OutboxRelayConfig{
		Repo:      env.svc.OutboxRepo,
		Encolador: worker.NewDispatcher(env.rdb),
	})
	n, err := relay.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "VENTA_REGISTRADA and STOCK_BAJO")
	queued, err := env.rdb.LLen(context.Background(), worker.QueueNotificaciones).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(n), queued)
}

func TestE2E_VentasConcurrentesNoSobrevenden(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.seedProducto(t, "Pan molde", 12, 5, 0)

	const intentos = 4
	var wg sync.WaitGroup
	codes := make([]int, intentos)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := do(t, env.server, http.MethodPost, "/v1/ventas", map[string]any{
				"items": []map[string]any{{"producto_id": prod, "cantidad": 2}},
			}, env.admin)
			resp.Body.Close()
			codes[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, c := range codes {
		if c == http.StatusCreated {
			ok++
		} else {
			assert.Equal(t, http.StatusConflict, c)
		}
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, env.stock(t, prod).Cantidad)
}

func TestE2E_VentaOnlineReservaYValida(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.seedProducto(t, "Cafe 250g", 40, 6, 0)

	var catalogo struct {
		Productos []struct {
			ID uint `json:"id"`
		} `json:"productos"`
	}
	expect(t, do(t, env.server, http.MethodGet, fmt.Sprintf("/v1/public/microempresas/%d/catalogo", env.empresa), nil, ""),
		http.StatusOK, &catalogo)
	require.Len(t, catalogo.Productos, 1)

	var venta struct {
		ID     uint   `json:"id"`
		Estado string `json:"estado"`
	}
	expect(t, do(t, env.server, http.MethodPost, fmt.Sprintf("/v1/public/microempresas/%d/ventas", env.empresa), map[string]any{
		"cliente":     map[string]any{"nombre": "Carla Rojas", "telefono": "+591 71234567"},
		"items":       []map[string]any{{"producto_id": prod, "cantidad": 4, "precio_unitario": 1}},
		"metodo_pago": "QR",
	}, ""), http.StatusCreated, &venta)
	assert.Equal(t, model.VentaPendientePago, venta.Estado)

	s := env.stock(t, prod)
	assert.Equal(t, 6, s.Cantidad)
	assert.Equal(t, 4, s.Reservado)
	assert.Equal(t, 2, s.Disponible)

	expect(t, do(t, env.server, http.MethodPost, fmt.Sprintf("/v1/public/ventas/%d/comprobante", venta.ID), map[string]any{
		"telefono": "+591 7123-4567", "metodo": "QR", "comprobante_url": "https://pagos.example.com/qr/123.png",
	}, ""), http.StatusCreated, nil)

	var validada struct {
		Estado string `json:"estado"`
		Total  string `json:"total"`
	}
	expect(t, do(t, env.server, http.MethodPost, fmt.Sprintf("/v1/ventas/%d/validar", venta.ID), nil, env.admin),
		http.StatusOK, &validada)
	assert.Equal(t, model.VentaPagada, validada.Estado)
	assert.Equal(t, "160", validada.Total, "online sales use the catalog price")

	s = env.stock(t, prod)
	assert.Equal(t, 2, s.Cantidad)
	assert.Equal(t, 0, s.Reservado)

	// Validating again is a no-op.
	expect(t, do(t, env.server, http.MethodPost, fmt.Sprintf("/v1/ventas/%d/validar", venta.ID), nil, env.admin),
		http.StatusOK, nil)
	assert.Equal(t, 2, env.stock(t, prod).Cantidad)

	expect(t, do(t, env.server, http.MethodPost, fmt.Sprintf("/v1/ventas/%d/rechazar", venta.ID), nil, env.admin),
		http.StatusConflict, nil)
}

func TestE2E_AislamientoEntreMicroempresas(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.seedProducto(t, "Yogurt 1L", 18, 4, 0)

	var otra idBody
	expect(t, do(t, env.server, http.MethodPost, "/v1/microempresas", map[string]any{
		"nombre": "Competencia", "nit": "999888777",
		"admin": map[string]string{"nombre": "Otro Admin", "email": "otro@e2e.test", "password": "otro-clave-2026"},
	}, env.super), http.StatusCreated, &otra)
	ajeno := login(t, env.server, "otro@e2e.test", "otro-clave-2026")

	expect(t, do(t, env.server, http.MethodGet, fmt.Sprintf("/v1/productos/%d", prod), nil, ajeno), http.StatusForbidden, nil)
	expect(t, do(t, env.server, http.MethodPost, "/v1/ventas", map[string]any{
		"items": []map[string]any{{"producto_id": prod, "cantidad": 1}},
	}, ajeno), http.StatusForbidden, nil)
	assert.Equal(t, 4, env.stock(t, prod).Cantidad)
}

func TestE2E_CompraFinalizadaIngresaStock(t *testing.T) {
	env := setupTestEnv(t)
	prod := env.seedProducto(t, "Azucar 1kg", 9, 0, 0)

	var prov idBody
	expect(t, do(t, env.server, http.MethodPost, "/v1/proveedores", map[string]any{"nombre": "Ingenio Norte"}, env.admin),
		http.StatusCreated, &prov)
	expect(t, do(t, env.server, http.MethodPost, fmt.Sprintf("/v1/proveedores/%d/productos", prov.ID),
		map[string]any{"producto_id": prod, "precio_referencia": 6.5}, env.admin), http.StatusOK, nil)
	var metodo idBody
	expect(t, do(t, env.server, http.MethodPost, fmt.Sprintf("/v1/proveedores/%d/metodos-pago", prov.ID),
		map[string]any{"metodo": "TRANSFERENCIA"}, env.admin), http.StatusCreated, &metodo)

	var compra idBody
	expect(t, do(t, env.server, http.MethodPost, "/v1/compras", map[string]any{"proveedor_id": prov.ID}, env.admin),
		http.StatusCreated, &compra)
	base := fmt.Sprintf("/v1/compras/%d", compra.ID)
	expect(t, do(t, env.server, http.MethodPost, base+"/detalles",
		map[string]any{"producto_id": prod, "cantidad": 50, "costo_unitario": 6.8}, env.admin), http.StatusOK, nil)
	expect(t, do(t, env.server, http.MethodPost, base+"/confirmar", nil, env.admin), http.StatusOK, nil)
	expect(t, do(t, env.server, http.MethodPost, base+"/pagos",
		map[string]any{"metodo_pago_id": metodo.ID, "monto": 340}, env.admin), http.StatusOK, nil)

	var final struct {
		Estado string `json:"estado"`
	}
	expect(t, do(t, env.server, http.MethodPost, base+"/finalizar", nil, env.admin), http.StatusOK, &final)
	assert.Equal(t, model.CompraPagada, final.Estado)
	assert.Equal(t, 50, env.stock(t, prod).Cantidad)

	var historial struct {
		Total int64 `json:"total"`
	}
	expect(t, do(t, env.server, http.MethodGet, fmt.Sprintf("/v1/productos/%d/historial-precios", prod), nil, env.admin),
		http.StatusOK, &historial)
	assert.Equal(t, int64(1), historial.Total)
}
