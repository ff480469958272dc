package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// emitirTx appends a domain event to the outbox inside tx. The relay delivers it
// after commit, so a rolled back change never produces a notification.
func emitirTx(tx *gorm.DB, outbox repository.OutboxRepository, mid uint, tipo string, ref *uint, mensaje string, datos map[string]any) error {
	if datos == nil {
		datos = map[string]any{}
	}
	payload, err := json.Marshal(datos)
	if err != nil {
		return err
	}
	return outbox.CreateTx(tx, &model.EventoOutbox{
		EventoID:       uuid.New(),
		MicroempresaID: mid,
		Tipo:           tipo,
		ReferenciaID:   ref,
		Mensaje:        mensaje,
		Payload:        string(payload),
		Estado:         model.OutboxPendiente,
		ProximoIntento: time.Now(),
	})
}

func ptrUint(v uint) *uint { return &v }
