package repository

import (
	"context"
	"sort"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockRepository interface {
	CreateTx(tx *gorm.DB, s *model.Stock) error
	FindByProductoID(ctx context.Context, productoID uint) (*model.Stock, error)
	// LockByProductoIDs takes row locks in ascending producto_id order so two
	// sales touching the same products cannot deadlock each other.
	LockByProductoIDs(tx *gorm.DB, productoIDs []uint) ([]model.Stock, error)
	SaveTx(tx *gorm.DB, s *model.Stock) error
	List(ctx context.Context, microempresaID uint, soloBajoMinimo bool) ([]model.Stock, error)
	CountBajoMinimo(ctx context.Context, microempresaID uint) (int64, error)
	DB() *gorm.DB
}

type stockRepo struct{ db *gorm.DB }

func NewStockRepository(db *gorm.DB) StockRepository { return &stockRepo{db: db} }

func (r *stockRepo) DB() *gorm.DB { return r.db }

func (r *stockRepo) CreateTx(tx *gorm.DB, s *model.Stock) error {
	return tx.Create(s).Error
}

func (r *stockRepo) FindByProductoID(ctx context.Context, productoID uint) (*model.Stock, error) {
	var s model.Stock
	err := r.db.WithContext(ctx).Preload("Producto").Where("producto_id = ?", productoID).First(&s).Error
	return &s, err
}

func (r *stockRepo) LockByProductoIDs(tx *gorm.DB, productoIDs []uint) ([]model.Stock, error) {
	ids := append([]uint(nil), productoIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []model.Stock
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("producto_id IN ?", ids).
		Order("producto_id ASC").
		Find(&out).Error
	return out, err
}

func (r *stockRepo) SaveTx(tx *gorm.DB, s *model.Stock) error {
	return tx.Omit("Producto").Save(s).Error
}

func (r *stockRepo) List(ctx context.Context, microempresaID uint, soloBajoMinimo bool) ([]model.Stock, error) {
	var out []model.Stock
	q := r.db.WithContext(ctx).Preload("Producto").Where("microempresa_id = ?", microempresaID)
	if soloBajoMinimo {
		q = q.Where("cantidad <= stock_minimo")
	}
	err := q.Order("producto_id").Find(&out).Error
	return out, err
}

func (r *stockRepo) CountBajoMinimo(ctx context.Context, microempresaID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Stock{}).
		Where("microempresa_id = ? AND cantidad <= stock_minimo", microempresaID).
		Count(&n).Error
	return n, err
}
