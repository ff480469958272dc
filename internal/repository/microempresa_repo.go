package repository

import (
	"context"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/gorm"
)

type MicroempresaRepository interface {
	CreateTx(tx *gorm.DB, m *model.Microempresa) error
	FindByID(ctx context.Context, id uint) (*model.Microempresa, error)
	ExistsNIT(ctx context.Context, nit string) (bool, error)
	List(ctx context.Context) ([]model.Microempresa, error)
	Update(ctx context.Context, m *model.Microempresa) error
	DB() *gorm.DB
}

type microempresaRepo struct{ db *gorm.DB }

func NewMicroempresaRepository(db *gorm.DB) MicroempresaRepository {
	return &microempresaRepo{db: db}
}

func (r *microempresaRepo) DB() *gorm.DB { return r.db }

func (r *microempresaRepo) CreateTx(tx *gorm.DB, m *model.Microempresa) error {
	return tx.Create(m).Error
}

func (r *microempresaRepo) FindByID(ctx context.Context, id uint) (*model.Microempresa, error) {
	var m model.Microempresa
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *microempresaRepo) ExistsNIT(ctx context.Context, nit string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Microempresa{}).Where("nit = ?", nit).Count(&n).Error
	return n > 0, err
}

func (r *microempresaRepo) List(ctx context.Context) ([]model.Microempresa, error) {
	var out []model.Microempresa
	err := r.db.WithContext(ctx).Order("nombre").Find(&out).Error
	return out, err
}

func (r *microempresaRepo) Update(ctx context.Context, m *model.Microempresa) error {
	return r.db.WithContext(ctx).Save(m).Error
}
