package repository

import (
	"context"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/gorm"
)

type SuscripcionRepository interface {
	CreateTx(tx *gorm.DB, s *model.Suscripcion) error
	FindByID(ctx context.Context, id uint) (*model.Suscripcion, error)
	// List returns every subscription when microempresaID is nil, newest first.
	List(ctx context.Context, microempresaID *uint) ([]model.Suscripcion, error)
	Update(ctx context.Context, s *model.Suscripcion) error
	// DesactivarTx ends every active subscription of the business.
	DesactivarTx(tx *gorm.DB, microempresaID uint) error
	// FindVigente returns the active subscription covering now, with its plan.
	FindVigente(ctx context.Context, microempresaID uint, now time.Time) (*model.Suscripcion, error)

	DB() *gorm.DB
}

type suscripcionRepo struct{ db *gorm.DB }

func NewSuscripcionRepository(db *gorm.DB) SuscripcionRepository { return &suscripcionRepo{db: db} }

func (r *suscripcionRepo) DB() *gorm.DB { return r.db }

func (r *suscripcionRepo) CreateTx(tx *gorm.DB, s *model.Suscripcion) error {
	return tx.Create(s).Error
}

func (r *suscripcionRepo) FindByID(ctx context.Context, id uint) (*model.Suscripcion, error) {
	var s model.Suscripcion
	err := r.db.WithContext(ctx).Preload("Plan").First(&s, id).Error
	return &s, err
}

func (r *suscripcionRepo) List(ctx context.Context, microempresaID *uint) ([]model.Suscripcion, error) {
	var out []model.Suscripcion
	q := r.db.WithContext(ctx).Preload("Plan")
	if microempresaID != nil {
		q = q.Where("microempresa_id = ?", *microempresaID)
	}
	err := q.Order("fecha_inicio DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *suscripcionRepo) Update(ctx context.Context, s *model.Suscripcion) error {
	return r.db.WithContext(ctx).Omit("Plan").Save(s).Error
}

func (r *suscripcionRepo) DesactivarTx(tx *gorm.DB, microempresaID uint) error {
	return tx.Model(&model.Suscripcion{}).
		Where("microempresa_id = ? AND activa = true", microempresaID).
		Update("activa", false).Error
}

func (r *suscripcionRepo) FindVigente(ctx context.Context, microempresaID uint, now time.Time) (*model.Suscripcion, error) {
	var s model.Suscripcion
	err := r.db.WithContext(ctx).Preload("Plan").
		Where("microempresa_id = ? AND activa = true AND fecha_inicio <= ? AND fecha_fin > ?", microempresaID, now, now).
		Order("fecha_inicio DESC").
		First(&s).Error
	return &s, err
}
