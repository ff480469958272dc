package repository

import (
	"context"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VentaRepository interface {
	CreateTx(tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uint) (*model.Venta, error)
	// LockByIDTx loads the sale with its lines and payments under a row lock.
	LockByIDTx(tx *gorm.DB, id uint) (*model.Venta, error)
	UpdateEstadoTx(tx *gorm.DB, id uint, estado string) error
	CreatePagoTx(tx *gorm.DB, p *model.PagoVenta) error
	UpdatePagoEstadoTx(tx *gorm.DB, pagoID uint, estado string) error
	List(ctx context.Context, microempresaID uint, filter dto.VentaFilter) ([]model.Venta, int64, error)
	ListPendientesAntes(ctx context.Context, antes time.Time, limit int) ([]model.Venta, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Omit("Cliente", "Usuario", "Detalles.Producto").Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uint) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles.Producto").Preload("Pagos").Preload("Cliente").
		First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) LockByIDTx(tx *gorm.DB, id uint) (*model.Venta, error) {
	var v model.Venta
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("venta_id = ?", id).Order("id").Find(&v.Detalles).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("venta_id = ?", id).Order("fecha, id").Find(&v.Pagos).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) UpdateEstadoTx(tx *gorm.DB, id uint, estado string) error {
	return tx.Model(&model.Venta{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *ventaRepo) CreatePagoTx(tx *gorm.DB, p *model.PagoVenta) error {
	return tx.Create(p).Error
}

func (r *ventaRepo) UpdatePagoEstadoTx(tx *gorm.DB, pagoID uint, estado string) error {
	return tx.Model(&model.PagoVenta{}).Where("id = ?", pagoID).Update("estado", estado).Error
}

func (r *ventaRepo) List(ctx context.Context, microempresaID uint, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{}).Where("microempresa_id = ?", microempresaID)
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.FechaInicio != "" {
		q = q.Where("fecha >= ?::date", filter.FechaInicio)
	}
	if filter.FechaFin != "" {
		q = q.Where("fecha < (?::date + INTERVAL '1 day')", filter.FechaFin)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Detalles.Producto").Preload("Pagos").Preload("Cliente").
		Order("fecha DESC, id DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) ListPendientesAntes(ctx context.Context, antes time.Time, limit int) ([]model.Venta, error) {
	var out []model.Venta
	err := r.db.WithContext(ctx).
		Where("estado = ? AND tipo = ? AND fecha < ?", model.VentaPendientePago, model.VentaOnline, antes).
		Order("fecha ASC").Limit(limit).
		Find(&out).Error
	return out, err
}
