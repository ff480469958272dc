package repository

import (
	"context"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/gorm"
)

type CategoriaRepository interface {
	Create(ctx context.Context, c *model.Categoria) error
	FindByID(ctx context.Context, id uint) (*model.Categoria, error)
	ExistsNombre(ctx context.Context, microempresaID uint, nombre string, exceptID uint) (bool, error)
	List(ctx context.Context, microempresaID uint, incluirInactivas bool) ([]model.Categoria, error)
	Update(ctx context.Context, c *model.Categoria) error
}

type categoriaRepo struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository { return &categoriaRepo{db: db} }

func (r *categoriaRepo) Create(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoriaRepo) FindByID(ctx context.Context, id uint) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *categoriaRepo) ExistsNombre(ctx context.Context, microempresaID uint, nombre string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Categoria{}).
		Where("microempresa_id = ? AND LOWER(nombre) = LOWER(?) AND id <> ?", microempresaID, nombre, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *categoriaRepo) List(ctx context.Context, microempresaID uint, incluirInactivas bool) ([]model.Categoria, error) {
	var out []model.Categoria
	q := r.db.WithContext(ctx).Where("microempresa_id = ?", microempresaID)
	if !incluirInactivas {
		q = q.Where("activo = true")
	}
	err := q.Order("nombre").Find(&out).Error
	return out, err
}

func (r *categoriaRepo) Update(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Save(c).Error
}
