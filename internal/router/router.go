package router

import (
	"context"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/config"
	"github.com/Crissancio/Backend-Taller/internal/handler"
	"github.com/Crissancio/Backend-Taller/internal/infra"
	"github.com/Crissancio/Backend-Taller/internal/middleware"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/ws"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	superadmin = model.RolSuperadmin
	admin      = model.RolAdmin
	vendedor   = model.RolVendedor
)

// New returns a configured Gin engine. ctx bounds the rate limiter purge
// goroutine.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, hub *ws.Hub, svc *Services, breakers ...*infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.NewAPILimiter(1000, time.Minute) // 1000 req/min per IP
	loginLimiter := middleware.NewLoginLimiter()
	middleware.StartPurge(ctx, apiLimiter, loginLimiter)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics())
	}
	r.Use(apiLimiter.Handler())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svc.Auth)
	usuariosH := handler.NewUsuariosHandler(svc.Auth)
	microempresasH := handler.NewMicroempresasHandler(svc.Microempresas)
	categoriasH := handler.NewCategoriasHandler(svc.Categorias)
	productosH := handler.NewProductosHandler(svc.Productos)
	inventarioH := handler.NewInventarioHandler(svc.Stock)
	clientesH := handler.NewClientesHandler(svc.Clientes)
	ventasH := handler.NewVentasHandler(svc.Ventas)
	proveedoresH := handler.NewProveedoresHandler(svc.Proveedores)
	comprasH := handler.NewComprasHandler(svc.Compras)
	notificacionesH := handler.NewNotificacionesHandler(svc.Notificaciones, hub, cfg.JWTSecret)
	reportesH := handler.NewReportesHandler(svc.Reportes)
	planesH := handler.NewPlanesHandler(svc.Planes)
	suscripcionesH := handler.NewSuscripcionesHandler(svc.Suscripciones)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, svc.OutboxRepo, breakers...))
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	r.GET("/ws/notificaciones", notificacionesH.Conectar)

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Handler(), authH.Login)
		auth.POST("/refresh", loginLimiter.Handler(), authH.Refresh)
	}

	// Storefront and online checkout: no auth
	public := r.Group("/v1/public")
	{
		public.GET("/microempresas/:id/catalogo", productosH.Catalogo)
		public.POST("/microempresas/:id/ventas", ventasH.CrearVentaOnline)
		public.POST("/ventas/:id/comprobante", ventasH.RegistrarComprobante)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	todos := middleware.RequireRole(superadmin, admin, vendedor)
	gestion := middleware.RequireRole(superadmin, admin)

	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/auth/me", authH.Me)

		v1.POST("/microempresas", middleware.RequireRole(superadmin), microempresasH.Crear)
		v1.GET("/microempresas", gestion, microempresasH.Listar)
		v1.GET("/microempresas/:id", gestion, microempresasH.Obtener)
		v1.PUT("/microempresas/:id", gestion, microempresasH.Actualizar)
		v1.PATCH("/microempresas/:id/estado", middleware.RequireRole(superadmin), microempresasH.CambiarEstado)
		v1.GET("/microempresas/:id/suscripcion", gestion, suscripcionesH.Vigente)

		// Plans and subscriptions: admins read, superadmins write
		v1.GET("/planes", gestion, planesH.Listar)
		v1.GET("/planes/:id", gestion, planesH.Obtener)
		planes := v1.Group("/planes", middleware.RequireRole(superadmin))
		{
			planes.POST("", planesH.Crear)
			planes.PUT("/:id", planesH.Actualizar)
			planes.PATCH("/:id/estado", planesH.CambiarEstado)
			planes.DELETE("/:id", planesH.Eliminar)
		}
		v1.GET("/suscripciones", gestion, suscripcionesH.Listar)
		v1.GET("/suscripciones/:id", gestion, suscripcionesH.Obtener)
		suscripciones := v1.Group("/suscripciones", middleware.RequireRole(superadmin))
		{
			suscripciones.POST("", suscripcionesH.Crear)
			suscripciones.PUT("/:id", suscripcionesH.Actualizar)
			suscripciones.PATCH("/:id/baja", suscripcionesH.DarDeBaja)
		}

		usuarios := v1.Group("/usuarios", gestion)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
		}

		// Categorías: everyone reads, admins write
		v1.GET("/categorias", todos, categoriasH.Listar)
		categorias := v1.Group("/categorias", gestion)
		{
			categorias.POST("", categoriasH.Crear)
			categorias.PUT("/:id", categoriasH.Actualizar)
			categorias.DELETE("/:id", categoriasH.Desactivar)
		}

		v1.GET("/productos", todos, productosH.Listar)
		v1.GET("/productos/:id", todos, productosH.Obtener)
		v1.GET("/productos/:id/historial-precios", todos, productosH.HistorialPrecios)
		prods := v1.Group("/productos", gestion)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Desactivar)
			prods.PATCH("/:id/reactivar", productosH.Reactivar)
		}

		v1.GET("/inventario", todos, inventarioH.Listar)
		v1.GET("/inventario/movimientos", todos, inventarioH.ListarMovimientos)
		v1.GET("/inventario/:producto_id", todos, inventarioH.Obtener)
		inv := v1.Group("/inventario", gestion)
		{
			inv.POST("/:producto_id/ajuste", inventarioH.Ajustar)
			inv.PUT("/:producto_id/configuracion", inventarioH.Configurar)
			inv.POST("/:producto_id/inicial", inventarioH.StockInicial)
		}

		clientes := v1.Group("/clientes", todos)
		{
			clientes.POST("", clientesH.Crear)
			clientes.GET("", clientesH.Listar)
			clientes.GET("/:id", clientesH.Obtener)
			clientes.PUT("/:id", clientesH.Actualizar)
		}

		ventas := v1.Group("/ventas", todos)
		{
			ventas.POST("", ventasH.RegistrarVenta)
			ventas.GET("", ventasH.ListarVentas)
			ventas.GET("/:id", ventasH.ObtenerVenta)
			ventas.GET("/:id/pdf", ventasH.DescargarPDF)
			ventas.POST("/:id/validar", gestion, ventasH.ValidarPago)
			ventas.POST("/:id/rechazar", gestion, ventasH.RechazarPago)
		}

		prov := v1.Group("/proveedores", gestion)
		{
			prov.POST("", proveedoresH.Crear)
			prov.GET("", proveedoresH.Listar)
			prov.GET("/:id", proveedoresH.Obtener)
			prov.PUT("/:id", proveedoresH.Actualizar)
			prov.POST("/:id/productos", proveedoresH.VincularProducto)
			prov.POST("/:id/metodos-pago", proveedoresH.AgregarMetodoPago)
			prov.POST("/:id/precios/masivo", proveedoresH.ActualizarPreciosMasivo)
		}

		compras := v1.Group("/compras", gestion)
		{
			compras.POST("", comprasH.Crear)
			compras.GET("", comprasH.Listar)
			compras.GET("/:id", comprasH.Obtener)
			compras.POST("/:id/detalles", comprasH.AgregarDetalle)
			compras.POST("/:id/confirmar", comprasH.Confirmar)
			compras.POST("/:id/pagos", comprasH.RegistrarPago)
			compras.POST("/:id/finalizar", comprasH.Finalizar)
			compras.POST("/:id/anular", comprasH.Anular)
		}

		notif := v1.Group("/notificaciones")
		{
			notif.GET("", notificacionesH.Listar)
			notif.PATCH("/leidas", notificacionesH.MarcarTodasLeidas)
			notif.PATCH("/:id/leida", notificacionesH.MarcarLeida)
			notif.GET("/preferencias", notificacionesH.ListarPreferencias)
			notif.PUT("/preferencias", notificacionesH.ActualizarPreferencia)
		}

		v1.GET("/reportes/dashboard", gestion, reportesH.Dashboard)

		v1.GET("/sistema/dlq", middleware.RequireRole(superadmin), handler.ListarDLQ(rdb))
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
