package repository

import (
	"context"

	"github.com/Crissancio/Backend-Taller/internal/dto"
	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	CreateTx(tx *gorm.DB, c *model.Cliente) error
	FindByID(ctx context.Context, id uint) (*model.Cliente, error)
	FindByTelefonoTx(tx *gorm.DB, microempresaID uint, telefono string) (*model.Cliente, error)
	ExistsTelefono(ctx context.Context, microempresaID uint, telefono string, exceptID uint) (bool, error)
	List(ctx context.Context, microempresaID uint, filter dto.ClienteFilter) ([]model.Cliente, int64, error)
	Update(ctx context.Context, c *model.Cliente) error
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) CreateTx(tx *gorm.DB, c *model.Cliente) error {
	return tx.Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uint) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clienteRepo) FindByTelefonoTx(tx *gorm.DB, microempresaID uint, telefono string) (*model.Cliente, error) {
	var c model.Cliente
	err := tx.Where("microempresa_id = ? AND telefono = ?", microempresaID, telefono).First(&c).Error
	return &c, err
}

func (r *clienteRepo) ExistsTelefono(ctx context.Context, microempresaID uint, telefono string, exceptID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Cliente{}).
		Where("microempresa_id = ? AND telefono = ? AND id <> ?", microempresaID, telefono, exceptID).
		Count(&n).Error
	return n > 0, err
}

func (r *clienteRepo) List(ctx context.Context, microempresaID uint, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Cliente{}).Where("microempresa_id = ?", microempresaID)
	if filter.Busqueda != "" {
		like := "%" + filter.Busqueda + "%"
		q = q.Where("(nombre ILIKE ? OR telefono ILIKE ? OR documento ILIKE ?)", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []model.Cliente
	err := q.Order("nombre").Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).Find(&out).Error
	return out, total, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}
