package repository

import (
	"context"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SerieDia is one day of the dashboard chart.
type SerieDia struct {
	Dia   time.Time
	Monto decimal.Decimal
}

type ReporteRepository interface {
	TotalVentas(ctx context.Context, microempresaID uint, desde, hasta time.Time) (decimal.Decimal, int64, error)
	TotalCompras(ctx context.Context, microempresaID uint, desde, hasta time.Time) (decimal.Decimal, error)
	SerieVentas(ctx context.Context, microempresaID uint, desde, hasta time.Time) ([]SerieDia, error)
	SerieCompras(ctx context.Context, microempresaID uint, desde, hasta time.Time) ([]SerieDia, error)
	CountVentasPendientes(ctx context.Context, microempresaID uint) (int64, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) TotalVentas(ctx context.Context, microempresaID uint, desde, hasta time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Total    decimal.Decimal
		Cantidad int64
	}
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("COALESCE(SUM(total), 0) AS total, COUNT(*) AS cantidad").
		Where("microempresa_id = ? AND estado = ? AND fecha >= ? AND fecha < ?", microempresaID, model.VentaPagada, desde, hasta).
		Scan(&row).Error
	return row.Total, row.Cantidad, err
}

func (r *reporteRepo) TotalCompras(ctx context.Context, microempresaID uint, desde, hasta time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Compra{}).
		Select("COALESCE(SUM(total), 0)").
		Where("microempresa_id = ? AND estado = ? AND fecha >= ? AND fecha < ?", microempresaID, model.CompraPagada, desde, hasta).
		Scan(&total).Error
	return total, err
}

func (r *reporteRepo) SerieVentas(ctx context.Context, microempresaID uint, desde, hasta time.Time) ([]SerieDia, error) {
	var out []SerieDia
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Select("DATE(fecha) AS dia, SUM(total) AS monto").
		Where("microempresa_id = ? AND estado = ? AND fecha >= ? AND fecha < ?", microempresaID, model.VentaPagada, desde, hasta).
		Group("DATE(fecha)").Order("dia").
		Scan(&out).Error
	return out, err
}

func (r *reporteRepo) SerieCompras(ctx context.Context, microempresaID uint, desde, hasta time.Time) ([]SerieDia, error) {
	var out []SerieDia
	err := r.db.WithContext(ctx).Model(&model.Compra{}).
		Select("DATE(fecha) AS dia, SUM(total) AS monto").
		Where("microempresa_id = ? AND estado = ? AND fecha >= ? AND fecha < ?", microempresaID, model.CompraPagada, desde, hasta).
		Group("DATE(fecha)").Order("dia").
		Scan(&out).Error
	return out, err
}

func (r *reporteRepo) CountVentasPendientes(ctx context.Context, microempresaID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Venta{}).
		Where("microempresa_id = ? AND estado = ?", microempresaID, model.VentaPendientePago).
		Count(&n).Error
	return n, err
}
