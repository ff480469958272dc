package repository

import (
	"context"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	FindByID(ctx context.Context, id uint) (*model.Proveedor, error)
	List(ctx context.Context, microempresaID uint) ([]model.Proveedor, error)
	Update(ctx context.Context, p *model.Proveedor) error

	FindVinculo(ctx context.Context, proveedorID, productoID uint) (*model.ProveedorProducto, error)
	SaveVinculo(ctx context.Context, v *model.ProveedorProducto) error
	ListVinculosActivos(ctx context.Context, proveedorID uint) ([]model.ProveedorProducto, error)
	UpdatePrecioReferenciaTx(tx *gorm.DB, vinculoID uint, precio decimal.Decimal) error

	CreateMetodoPago(ctx context.Context, m *model.ProveedorMetodoPago) error
	FindMetodoPago(ctx context.Context, id uint) (*model.ProveedorMetodoPago, error)

	DB() *gorm.DB
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) DB() *gorm.DB { return r.db }

func (r *proveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *proveedorRepo) FindByID(ctx context.Context, id uint) (*model.Proveedor, error) {
	var p model.Proveedor
	err := r.db.WithContext(ctx).
		Preload("Productos.Producto").
		Preload("MetodosPago", "activo = true").
		First(&p, id).Error
	return &p, err
}

func (r *proveedorRepo) List(ctx context.Context, microempresaID uint) ([]model.Proveedor, error) {
	var out []model.Proveedor
	err := r.db.WithContext(ctx).
		Preload("MetodosPago", "activo = true").
		Where("microempresa_id = ?", microempresaID).
		Order("nombre").Find(&out).Error
	return out, err
}

func (r *proveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Omit("Productos", "MetodosPago").Save(p).Error
}

func (r *proveedorRepo) FindVinculo(ctx context.Context, proveedorID, productoID uint) (*model.ProveedorProducto, error) {
	var v model.ProveedorProducto
	err := r.db.WithContext(ctx).
		Where("proveedor_id = ? AND producto_id = ?", proveedorID, productoID).
		First(&v).Error
	return &v, err
}

func (r *proveedorRepo) SaveVinculo(ctx context.Context, v *model.ProveedorProducto) error {
	return r.db.WithContext(ctx).Omit("Producto").Save(v).Error
}

func (r *proveedorRepo) ListVinculosActivos(ctx context.Context, proveedorID uint) ([]model.ProveedorProducto, error) {
	var out []model.ProveedorProducto
	err := r.db.WithContext(ctx).Preload("Producto").
		Where("proveedor_id = ? AND activo = true", proveedorID).
		Find(&out).Error
	return out, err
}

func (r *proveedorRepo) UpdatePrecioReferenciaTx(tx *gorm.DB, vinculoID uint, precio decimal.Decimal) error {
	return tx.Model(&model.ProveedorProducto{}).Where("id = ?", vinculoID).Update("precio_referencia", precio).Error
}

func (r *proveedorRepo) CreateMetodoPago(ctx context.Context, m *model.ProveedorMetodoPago) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *proveedorRepo) FindMetodoPago(ctx context.Context, id uint) (*model.ProveedorMetodoPago, error) {
	var m model.ProveedorMetodoPago
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}
