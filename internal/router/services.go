package router

import (
	"time"

	"github.com/Crissancio/Backend-Taller/internal/config"
	"github.com/Crissancio/Backend-Taller/internal/repository"
	"github.com/Crissancio/Backend-Taller/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services is the wired service graph shared by the HTTP layer and the
// background workers started from main.
type Services struct {
	Auth           service.AuthService
	Microempresas  service.MicroempresaService
	Categorias     service.CategoriaService
	Productos      service.ProductoService
	Stock          service.StockService
	Clientes       service.ClienteService
	Ventas         service.VentaService
	Proveedores    service.ProveedorService
	Compras        service.CompraService
	Notificaciones service.NotificacionService
	Reportes       service.ReporteService
	Planes         service.PlanService
	Suscripciones  service.SuscripcionService

	UsuarioRepo      repository.UsuarioRepository
	NotificacionRepo repository.NotificacionRepository
	OutboxRepo       repository.OutboxRepository
}

// NewServices builds the dependency graph: Service ← Repository ← DB/Redis.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *Services {
	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	microempresaRepo := repository.NewMicroempresaRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	historialRepo := repository.NewHistorialPrecioRepository(db)
	stockRepo := repository.NewStockRepository(db)
	movimientoStockRepo := repository.NewMovimientoStockRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	compraRepo := repository.NewCompraRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	notificacionRepo := repository.NewNotificacionRepository(db)
	reporteRepo := repository.NewReporteRepository(db)
	planRepo := repository.NewPlanRepository(db)
	suscripcionRepo := repository.NewSuscripcionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	stockSvc := service.NewStockService(stockRepo, movimientoStockRepo, productoRepo, outboxRepo)
	clienteSvc := service.NewClienteService(clienteRepo)
	suscripcionSvc := service.NewSuscripcionService(suscripcionRepo, planRepo, microempresaRepo, usuarioRepo, productoRepo, outboxRepo)
	cacheTTL := time.Duration(cfg.CatalogoCacheSeconds) * time.Second

	return &Services{
		Auth:           service.NewAuthService(usuarioRepo, microempresaRepo, suscripcionSvc, cfg),
		Microempresas:  service.NewMicroempresaService(microempresaRepo, usuarioRepo),
		Categorias:     service.NewCategoriaService(categoriaRepo),
		Productos:      service.NewProductoService(productoRepo, categoriaRepo, microempresaRepo, historialRepo, stockSvc, suscripcionSvc, rdb, cacheTTL),
		Stock:          stockSvc,
		Clientes:       clienteSvc,
		Ventas:         service.NewVentaService(ventaRepo, productoRepo, microempresaRepo, outboxRepo, clienteSvc, stockSvc),
		Proveedores:    service.NewProveedorService(proveedorRepo, productoRepo),
		Compras:        service.NewCompraService(compraRepo, proveedorRepo, productoRepo, historialRepo, outboxRepo, stockSvc),
		Notificaciones: service.NewNotificacionService(notificacionRepo),
		Reportes:       service.NewReporteService(reporteRepo, stockRepo),
		Planes:         service.NewPlanService(planRepo),
		Suscripciones:  suscripcionSvc,

		UsuarioRepo:      usuarioRepo,
		NotificacionRepo: notificacionRepo,
		OutboxRepo:       outboxRepo,
	}
}
