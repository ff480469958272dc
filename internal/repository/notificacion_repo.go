package repository

import (
	"context"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificacionRepository interface {
	Create(ctx context.Context, n *model.Notificacion) error
	// Find returns the notification already stored for this event, user and
	// channel, or nil; workers use it to stay idempotent across retries.
	Find(ctx context.Context, eventoID uuid.UUID, usuarioID uint, canal string) (*model.Notificacion, error)
	ListByUsuario(ctx context.Context, usuarioID uint, soloNoLeidas bool, limit int) ([]model.Notificacion, error)
	MarcarLeida(ctx context.Context, usuarioID, id uint) error
	MarcarTodasLeidas(ctx context.Context, usuarioID uint) (int64, error)
	MarcarEncolada(ctx context.Context, id uint) error
	MarcarEnviada(ctx context.Context, id uint) error

	FindPreferencia(ctx context.Context, usuarioID uint, tipoEvento string) (*model.PreferenciaNotificacion, error)
	ListPreferencias(ctx context.Context, usuarioID uint) ([]model.PreferenciaNotificacion, error)
	UpsertPreferencia(ctx context.Context, p *model.PreferenciaNotificacion) error
}

type notificacionRepo struct{ db *gorm.DB }

func NewNotificacionRepository(db *gorm.DB) NotificacionRepository {
	return &notificacionRepo{db: db}
}

func (r *notificacionRepo) Create(ctx context.Context, n *model.Notificacion) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificacionRepo) Find(ctx context.Context, eventoID uuid.UUID, usuarioID uint, canal string) (*model.Notificacion, error) {
	var n model.Notificacion
	err := r.db.WithContext(ctx).
		Where("evento_id = ? AND usuario_id = ? AND canal = ?", eventoID, usuarioID, canal).
		Order("id").Limit(1).Find(&n).Error
	if err != nil || n.ID == 0 {
		return nil, err
	}
	return &n, nil
}

func (r *notificacionRepo) ListByUsuario(ctx context.Context, usuarioID uint, soloNoLeidas bool, limit int) ([]model.Notificacion, error) {
	var out []model.Notificacion
	q := r.db.WithContext(ctx).Where("usuario_id = ? AND canal = ?", usuarioID, model.CanalInApp)
	if soloNoLeidas {
		q = q.Where("leido = false")
	}
	err := q.Order("fecha DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *notificacionRepo) MarcarLeida(ctx context.Context, usuarioID, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Notificacion{}).
		Where("id = ? AND usuario_id = ?", id, usuarioID).
		Update("leido", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificacionRepo) MarcarTodasLeidas(ctx context.Context, usuarioID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notificacion{}).
		Where("usuario_id = ? AND leido = false", usuarioID).
		Update("leido", true)
	return res.RowsAffected, res.Error
}

func (r *notificacionRepo) MarcarEncolada(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Notificacion{}).Where("id = ?", id).Update("encolado", true).Error
}

func (r *notificacionRepo) MarcarEnviada(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.Notificacion{}).Where("id = ?", id).Update("enviado", true).Error
}

func (r *notificacionRepo) FindPreferencia(ctx context.Context, usuarioID uint, tipoEvento string) (*model.PreferenciaNotificacion, error) {
	var p model.PreferenciaNotificacion
	err := r.db.WithContext(ctx).Where("usuario_id = ? AND tipo_evento = ?", usuarioID, tipoEvento).First(&p).Error
	return &p, err
}

func (r *notificacionRepo) ListPreferencias(ctx context.Context, usuarioID uint) ([]model.PreferenciaNotificacion, error) {
	var out []model.PreferenciaNotificacion
	err := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).Order("tipo_evento").Find(&out).Error
	return out, err
}

func (r *notificacionRepo) UpsertPreferencia(ctx context.Context, p *model.PreferenciaNotificacion) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "usuario_id"}, {Name: "tipo_evento"}},
		DoUpdates: clause.AssignmentColumns([]string{"recibir_app", "recibir_email", "updated_at"}),
	}).Create(p).Error
}
