package repository

import (
	"context"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/gorm"
)

type PlanRepository interface {
	Create(ctx context.Context, p *model.Plan) error
	FindByID(ctx context.Context, id uint) (*model.Plan, error)
	ExistsNombre(ctx context.Context, nombre string, exceptID uint) (bool, error)
	// List filters by activo when it is non-nil.
	List(ctx context.Context, activo *bool) ([]model.Plan, error)
	Update(ctx context.Context, p *model.Plan) error
	Delete(ctx context.Context, id uint) error
	CountSuscripciones(ctx context.Context, planID uint) (int64, error)
}

type planRepo struct{ db *gorm.DB }

func NewPlanRepository(db *gorm.DB) PlanRepository { return &planRepo{db: db} }

func (r *planRepo) Create(ctx context.Context, p *model.Plan) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *planRepo) FindByID(ctx context.Context, id uint) (*model.Plan, error) {
	var p model.Plan
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *planRepo) ExistsNombre(ctx context.Context, nombre string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Plan{}).
		Where("LOWER(nombre) = LOWER(?) AND id <> ?", nombre, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *planRepo) List(ctx context.Context, activo *bool) ([]model.Plan, error) {
	var out []model.Plan
	q := r.db.WithContext(ctx)
	if activo != nil {
		q = q.Where("activo = ?", *activo)
	}
	err := q.Order("precio, nombre").Find(&out).Error
	return out, err
}

func (r *planRepo) Update(ctx context.Context, p *model.Plan) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *planRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Plan{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *planRepo) CountSuscripciones(ctx context.Context, planID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Suscripcion{}).Where("plan_id = ?", planID).Count(&n).Error
	return n, err
}
