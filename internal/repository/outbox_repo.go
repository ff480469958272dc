package repository

import (
	"context"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxRepository interface {
	CreateTx(tx *gorm.DB, e *model.EventoOutbox) error
	// ClaimPendientesTx locks due rows with SKIP LOCKED so several relays can
	// run side by side without delivering the same event twice.
	ClaimPendientesTx(tx *gorm.DB, now time.Time, limit int) ([]model.EventoOutbox, error)
	SaveTx(tx *gorm.DB, e *model.EventoOutbox) error
	CountByEstado(ctx context.Context, estado string) (int64, error)
	DB() *gorm.DB
}

type outboxRepo struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) OutboxRepository { return &outboxRepo{db: db} }

func (r *outboxRepo) DB() *gorm.DB { return r.db }

func (r *outboxRepo) CreateTx(tx *gorm.DB, e *model.EventoOutbox) error {
	return tx.Create(e).Error
}

func (r *outboxRepo) ClaimPendientesTx(tx *gorm.DB, now time.Time, limit int) ([]model.EventoOutbox, error) {
	var out []model.EventoOutbox
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("estado = ? AND proximo_intento <= ?", model.OutboxPendiente, now).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *outboxRepo) SaveTx(tx *gorm.DB, e *model.EventoOutbox) error {
	return tx.Save(e).Error
}

func (r *outboxRepo) CountByEstado(ctx context.Context, estado string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.EventoOutbox{}).Where("estado = ?", estado).Count(&n).Error
	return n, err
}
