package worker

// The relay drains eventos_outbox into the notification queue. Rows are
// claimed with SKIP LOCKED, so several replicas can relay concurrently and
// an event is handed over at least once.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/metrics"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const maxRelayBackoff = 5 * time.Minute

// EventoEncolador hands a drained event to the async pipeline.
type EventoEncolador interface {
	EnqueueEvento(ctx context.Context, ev EventoJob) error
}

// EventSink mirrors dispatched events to an external stream. Failures are
// logged and never block the relay.
type EventSink interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type OutboxRelayConfig struct {
	Repo        repository.OutboxRepository
	Encolador   EventoEncolador
	Sink        EventSink     // optional
	RDB         *redis.Client // optional; FALLIDO events are copied to the DLQ
	Interval    time.Duration
	BatchSize   int
	MaxIntentos int
}

type OutboxRelay struct {
	cfg OutboxRelayConfig
	now func() time.Time
}

func NewOutboxRelay(cfg OutboxRelayConfig) *OutboxRelay {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxIntentos <= 0 {
		cfg.MaxIntentos = 8
	}
	return &OutboxRelay{cfg: cfg, now: time.Now}
}

// Start launches the relay goroutine; it stops when ctx is cancelled.
func (r *OutboxRelay) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", r.cfg.Interval).Msg("outbox_relay: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("outbox_relay: shutting down")
				return
			case <-ticker.C:
				// Keep draining while full batches come back.
				for {
					n, err := r.Tick(ctx)
					if err != nil {
						log.Error().Err(err).Msg("outbox_relay: tick failed")
						break
					}
					if n < r.cfg.BatchSize {
						break
					}
				}
			}
		}
	}()
}

// Tick processes one batch of due events and returns how many were claimed.
func (r *OutboxRelay) Tick(ctx context.Context) (int, error) {
	var claimed int
	err := r.inTx(ctx, func(tx *gorm.DB) error {
		now := r.now()
		eventos, err := r.cfg.Repo.ClaimPendientesTx(tx, now, r.cfg.BatchSize)
		if err != nil {
			return err
		}
		claimed = len(eventos)
		for i := range eventos {
			r.despachar(ctx, &eventos[i], now)
			if err := r.cfg.Repo.SaveTx(tx, &eventos[i]); err != nil {
				return err
			}
		}
		return nil
	})
	return claimed, err
}

func (r *OutboxRelay) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := r.cfg.Repo.DB()
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (r *OutboxRelay) despachar(ctx context.Context, e *model.EventoOutbox, now time.Time) {
	job := eventoToJob(e)
	err := r.cfg.Encolador.EnqueueEvento(ctx, job)
	if err == nil {
		e.Estado = model.OutboxDespachado
		e.DespachadoAt = &now
		e.UltimoError = nil
		metrics.EventosDespachados.WithLabelValues(e.Tipo).Inc()
		r.publicar(ctx, job)
		return
	}

	e.Intentos++
	msg := err.Error()
	e.UltimoError = &msg
	if e.Intentos >= r.cfg.MaxIntentos {
		e.Estado = model.OutboxFallido
		metrics.EventosFallidos.Inc()
		log.Error().Err(err).Str("evento_id", e.EventoID.String()).Str("tipo", e.Tipo).
			Int("intentos", e.Intentos).Msg("outbox_relay: max attempts exceeded, event marked FALLIDO")
		if r.cfg.RDB != nil {
			if data, mErr := json.Marshal(job); mErr == nil {
				SendToDLQ(ctx, r.cfg.RDB, QueueNotificaciones, JobEvento, data, msg, e.Intentos)
			}
		}
		return
	}
	e.ProximoIntento = now.Add(relayBackoff(e.Intentos))
	log.Warn().Err(err).Str("evento_id", e.EventoID.String()).Int("intentos", e.Intentos).
		Time("proximo_intento", e.ProximoIntento).Msg("outbox_relay: enqueue failed, rescheduled")
}

func (r *OutboxRelay) publicar(ctx context.Context, job EventoJob) {
	if r.cfg.Sink == nil {
		return
	}
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := r.cfg.Sink.Publish(ctx, strconv.FormatUint(uint64(job.MicroempresaID), 10), data); err != nil {
		log.Warn().Err(err).Str("evento_id", job.EventoID.String()).Msg("outbox_relay: event sink publish failed")
	}
}

// relayBackoff doubles from 2s and caps at five minutes.
func relayBackoff(intentos int) time.Duration {
	if intentos > 10 {
		return maxRelayBackoff
	}
	d := time.Duration(1<<uint(intentos)) * time.Second
	if d > maxRelayBackoff {
		return maxRelayBackoff
	}
	return d
}

func eventoToJob(e *model.EventoOutbox) EventoJob {
	var datos json.RawMessage
	if e.Payload != "" {
		datos = json.RawMessage(e.Payload)
	}
	return EventoJob{
		EventoID:       e.EventoID,
		MicroempresaID: e.MicroempresaID,
		Tipo:           e.Tipo,
		ReferenciaID:   e.ReferenciaID,
		Mensaje:        e.Mensaje,
		Datos:          datos,
		Fecha:          e.CreatedAt,
	}
}
