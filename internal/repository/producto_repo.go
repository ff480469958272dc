package repository

import (
	"context"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	CreateTx(tx *gorm.DB, p *model.Producto) error
	FindByID(ctx context.Context, id uint) (*model.Producto, error)
	// FindByIDs returns the products found; missing ids are simply absent.
	FindByIDs(ctx context.Context, ids []uint) ([]model.Producto, error)
	List(ctx context.Context, microempresaID uint, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	ListCatalogo(ctx context.Context, microempresaID uint) ([]model.Producto, error)
	Update(ctx context.Context, p *model.Producto) error
	UpdateTx(tx *gorm.DB, p *model.Producto) error
	UpdateCostoTx(tx *gorm.DB, id uint, costo decimal.Decimal) error
	CountActivos(ctx context.Context, microempresaID uint) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) DB() *gorm.DB { return r.db }

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uint) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Preload("Categoria").Preload("Stock").First(&p, id).Error
	return &p, err
}

func (r *productoRepo) FindByIDs(ctx context.Context, ids []uint) ([]model.Producto, error) {
	var out []model.Producto
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *productoRepo) List(ctx context.Context, microempresaID uint, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{}).Where("microempresa_id = ?", microempresaID)
	if !filter.IncluirInactivos {
		q = q.Where("activo = true")
	}
	if filter.CategoriaID != 0 {
		q = q.Where("categoria_id = ?", filter.CategoriaID)
	}
	if filter.Busqueda != "" {
		like := "%" + filter.Busqueda + "%"
		q = q.Where("(nombre ILIKE ? OR codigo ILIKE ?)", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Categoria").Preload("Stock").
		Order("nombre ASC").
		Offset(offset).Limit(filter.Limit).
		Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) ListCatalogo(ctx context.Context, microempresaID uint) ([]model.Producto, error) {
	var out []model.Producto
	err := r.db.WithContext(ctx).
		Joins("JOIN categorias ON categorias.id = productos.categoria_id AND categorias.activo = true").
		Where("productos.microempresa_id = ? AND productos.activo = true", microempresaID).
		Preload("Categoria").Preload("Stock").
		Order("productos.nombre").
		Find(&out).Error
	return out, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Omit("Categoria", "Stock").Save(p).Error
}

func (r *productoRepo) UpdateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Omit("Categoria", "Stock").Save(p).Error
}

func (r *productoRepo) UpdateCostoTx(tx *gorm.DB, id uint, costo decimal.Decimal) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).Update("costo_compra", costo).Error
}

func (r *productoRepo) CountActivos(ctx context.Context, microempresaID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Producto{}).
		Where("microempresa_id = ? AND activo = true", microempresaID).
		Count(&n).Error
	return n, err
}
