package repository

import (
	"context"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/gorm"
)

type UsuarioRepository interface {
	Create(ctx context.Context, u *model.Usuario) error
	CreateTx(tx *gorm.DB, u *model.Usuario) error
	FindByEmail(ctx context.Context, email string) (*model.Usuario, error)
	FindByID(ctx context.Context, id uint) (*model.Usuario, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	// List returns every user when microempresaID is nil (superadmin view).
	List(ctx context.Context, microempresaID *uint) ([]model.Usuario, error)
	ListAdminsActivos(ctx context.Context, microempresaID uint) ([]model.Usuario, error)
	CountActivosPorRol(ctx context.Context, microempresaID uint, rol string) (int64, error)
	SetActivo(ctx context.Context, id uint, activo bool) error
}

type usuarioRepo struct{ db *gorm.DB }

func NewUsuarioRepository(db *gorm.DB) UsuarioRepository { return &usuarioRepo{db: db} }

func (r *usuarioRepo) Create(ctx context.Context, u *model.Usuario) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *usuarioRepo) CreateTx(tx *gorm.DB, u *model.Usuario) error {
	return tx.Create(u).Error
}

func (r *usuarioRepo) FindByEmail(ctx context.Context, email string) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Microempresa").
		Where("LOWER(email) = LOWER(?)", email).
		First(&u).Error
	return &u, err
}

func (r *usuarioRepo) FindByID(ctx context.Context, id uint) (*model.Usuario, error) {
	var u model.Usuario
	err := r.db.WithContext(ctx).Preload("Microempresa").First(&u, id).Error
	return &u, err
}

func (r *usuarioRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).Where("LOWER(email) = LOWER(?)", email).Count(&n).Error
	return n > 0, err
}

func (r *usuarioRepo) List(ctx context.Context, microempresaID *uint) ([]model.Usuario, error) {
	var users []model.Usuario
	q := r.db.WithContext(ctx).Order("nombre")
	if microempresaID != nil {
		q = q.Where("microempresa_id = ?", *microempresaID)
	}
	err := q.Find(&users).Error
	return users, err
}

func (r *usuarioRepo) ListAdminsActivos(ctx context.Context, microempresaID uint) ([]model.Usuario, error) {
	var users []model.Usuario
	err := r.db.WithContext(ctx).
		Where("microempresa_id = ? AND rol = ? AND activo = true", microempresaID, model.RolAdmin).
		Find(&users).Error
	return users, err
}

func (r *usuarioRepo) CountActivosPorRol(ctx context.Context, microempresaID uint, rol string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Usuario{}).
		Where("microempresa_id = ? AND rol = ? AND activo = true", microempresaID, rol).
		Count(&n).Error
	return n, err
}

func (r *usuarioRepo) SetActivo(ctx context.Context, id uint, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Usuario{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
