package infra

import (
	"fmt"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes, cross-column checks). verbose enables the
// GORM logger at warn level (slow queries, errors).
func NewDatabase(dsn string, verbose bool) (*gorm.DB, error) {
	mode := logger.Silent
	if verbose {
		mode = logger.Warn
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(mode),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates every table in dependency order and applies the
// schema patches. It is safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Microempresa{},
		&model.Plan{},
		&model.Suscripcion{},
		&model.Usuario{},
		&model.Categoria{},
		&model.Producto{},
		&model.HistorialPrecio{},
		&model.Stock{},
		&model.MovimientoStock{},
		&model.Cliente{},
		&model.Venta{},
		&model.DetalleVenta{},
		&model.PagoVenta{},
		&model.Proveedor{},
		&model.ProveedorProducto{},
		&model.ProveedorMetodoPago{},
		&model.Compra{},
		&model.DetalleCompra{},
		&model.PagoCompra{},
		&model.EventoOutbox{},
		&model.Notificacion{},
		&model.PreferenciaNotificacion{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches is fully idempotent: each statement is guarded by an
// existence check so re-running on an already-patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"stock: reservado never exceeds cantidad", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_stock_reservado_cantidad') THEN
    ALTER TABLE stock ADD CONSTRAINT chk_stock_reservado_cantidad CHECK (reservado <= cantidad);
  END IF;
END $$`},
		{"outbox: partial index over due rows",
			`CREATE INDEX IF NOT EXISTS idx_outbox_pendientes ON eventos_outbox (proximo_intento, id) WHERE estado = 'PENDIENTE'`},
		{"ventas: partial index over unpaid online sales",
			`CREATE INDEX IF NOT EXISTS idx_ventas_pendientes ON ventas (fecha) WHERE estado = 'PENDIENTE_PAGO' AND tipo = 'ONLINE'`},
		{"notificaciones: one row per event, user and channel",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_notificacion_evento_usuario_canal ON notificaciones (evento_id, usuario_id, canal)`},
		{"suscripciones: one active subscription per business",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_suscripcion_activa ON suscripciones (microempresa_id) WHERE activa`},
		{"productos: codigo unique per business when present",
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_producto_empresa_codigo ON productos (microempresa_id, codigo) WHERE codigo IS NOT NULL`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
	}
	return nil
}
