package worker

// Sends the email jobs queued by NotificacionWorker through the circuit
// breaker guarding the SMTP server.

import (
	"context"
	"encoding/json"

	"github.com/Crissancio/Backend-Taller/internal/infra"
	"github.com/Crissancio/Backend-Taller/internal/metrics"
	"github.com/Crissancio/Backend-Taller/internal/model"

	"github.com/rs/zerolog/log"
)

type MailSender interface {
	Send(to, subject, body string) error
}

type EnvioMarcador interface {
	MarcarEnviada(ctx context.Context, id uint) error
}

type EmailWorker struct {
	mailer MailSender
	cb     *infra.CircuitBreaker
	store  EnvioMarcador
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer MailSender, cb *infra.CircuitBreaker, store EnvioMarcador) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, store: store}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := w.cb.Execute(func() error {
		return w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body)
	})
	if err != nil {
		log.Warn().Err(err).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		return err
	}
	metrics.NotificacionesEnviadas.WithLabelValues(model.CanalEmail).Inc()

	if payload.NotificacionID != 0 {
		if err := w.store.MarcarEnviada(ctx, payload.NotificacionID); err != nil {
			// Email already left; retrying would send it twice.
			log.Error().Err(err).Uint("notificacion_id", payload.NotificacionID).Msg("email_worker: could not flag notification as sent")
		}
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: email sent")
	return nil
}
