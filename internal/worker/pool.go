package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueNotificaciones = "jobs:notificaciones"
	QueueEmail          = "jobs:email"

	JobEvento = "evento"
	JobEmail  = "email"

	// MaxJobAttempts bounds how many times a job is handed to its handler
	// before it is parked in the dead letter queue.
	MaxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// EventoJob is a domain event drained from the outbox.
type EventoJob struct {
	EventoID       uuid.UUID       `json:"evento_id"`
	MicroempresaID uint            `json:"microempresa_id"`
	Tipo           string          `json:"tipo"`
	ReferenciaID   *uint           `json:"referencia_id,omitempty"`
	Mensaje        string          `json:"mensaje"`
	Datos          json.RawMessage `json:"datos,omitempty"`
	Fecha          time.Time       `json:"fecha"`
}

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	NotificacionID uint   `json:"notificacion_id"`
	ToEmail        string `json:"to_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
}

// JobHandler processes one job payload. A returned error schedules a retry.
type JobHandler interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEvento pushes a domain event for notification fan-out.
func (d *Dispatcher) EnqueueEvento(ctx context.Context, ev EventoJob) error {
	return d.enqueue(ctx, QueueNotificaciones, JobEvento, ev)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func pushJob(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes both queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]JobHandler
}

// NewPool maps job types to handlers. Jobs with no handler go to the DLQ.
func NewPool(rdb *redis.Client, handlers map[string]JobHandler) *Pool {
	return &Pool{rdb: rdb, handlers: handlers}
}

// Start launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	queues := Queues()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Error().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "desconocido", json.RawMessage(fmt.Sprintf("%q", raw)), "payload invalido", 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "sin handler para el tipo de job", job.Attempts)
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("type", job.Type).Str("queue", queue).Int("attempt", job.Attempts).Msg("job processed")
		return
	}
	if job.Attempts >= MaxJobAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	wait := time.Duration(1<<uint(job.Attempts-1)) * time.Second
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
	// Use a fresh context so a job in flight during shutdown is not lost.
	if err := pushJob(context.Background(), p.rdb, queue, job); err != nil {
		log.Error().Err(err).Str("type", job.Type).Msg("job requeue failed")
	}
}
