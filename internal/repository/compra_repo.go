package repository

import (
	"context"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompraRepository interface {
	Create(ctx context.Context, c *model.Compra) error
	FindByID(ctx context.Context, id uint) (*model.Compra, error)
	// LockByIDTx loads the purchase with details and payments under a row lock.
	LockByIDTx(tx *gorm.DB, id uint) (*model.Compra, error)
	CreateDetalleTx(tx *gorm.DB, d *model.DetalleCompra) error
	UpdateTotalTx(tx *gorm.DB, id uint, total decimal.Decimal) error
	UpdateEstadoTx(tx *gorm.DB, id uint, estado string) error
	CreatePagoTx(tx *gorm.DB, p *model.PagoCompra) error
	List(ctx context.Context, microempresaID uint, filter dto.CompraFilter) ([]model.Compra, int64, error)
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) DB() *gorm.DB { return r.db }

func (r *compraRepo) Create(ctx context.Context, c *model.Compra) error {
	return r.db.WithContext(ctx).Omit("Proveedor").Create(c).Error
}

func (r *compraRepo) FindByID(ctx context.Context, id uint) (*model.Compra, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).
		Preload("Proveedor").Preload("Detalles.Producto").Preload("Pagos.MetodoPago").
		First(&c, id).Error
	return &c, err
}

func (r *compraRepo) LockByIDTx(tx *gorm.DB, id uint) (*model.Compra, error) {
	var c model.Compra
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("compra_id = ?", id).Order("id").Find(&c.Detalles).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("compra_id = ?", id).Order("id").Find(&c.Pagos).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *compraRepo) CreateDetalleTx(tx *gorm.DB, d *model.DetalleCompra) error {
	return tx.Omit("Producto").Create(d).Error
}

func (r *compraRepo) UpdateTotalTx(tx *gorm.DB, id uint, total decimal.Decimal) error {
	return tx.Model(&model.Compra{}).Where("id = ?", id).Update("total", total).Error
}

func (r *compraRepo) UpdateEstadoTx(tx *gorm.DB, id uint, estado string) error {
	return tx.Model(&model.Compra{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *compraRepo) CreatePagoTx(tx *gorm.DB, p *model.PagoCompra) error {
	return tx.Omit("MetodoPago").Create(p).Error
}

func (r *compraRepo) List(ctx context.Context, microempresaID uint, filter dto.CompraFilter) ([]model.Compra, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Compra{}).Where("microempresa_id = ?", microempresaID)
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.ProveedorID != 0 {
		q = q.Where("proveedor_id = ?", filter.ProveedorID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []model.Compra
	err := q.Preload("Proveedor").Preload("Detalles.Producto").Preload("Pagos.MetodoPago").
		Order("fecha DESC, id DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&out).Error
	return out, total, err
}
