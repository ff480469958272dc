package worker

// Cancels online sales whose payment proof never arrived or was never
// validated within the reservation TTL, releasing their reserved stock.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type Expirador interface {
	ExpirarPendientes(ctx context.Context, antes time.Time) (int, error)
}

type ExpiracionCronConfig struct {
	Ventas   Expirador
	TTL      time.Duration
	Interval time.Duration
}

// StartExpiracionCron ticks every Interval and expires pending sales created
// more than TTL ago. It respects ctx for graceful shutdown.
func StartExpiracionCron(ctx context.Context, cfg ExpiracionCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("ttl", cfg.TTL).Msg("expiracion_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("expiracion_cron: shutting down")
				return
			case <-ticker.C:
				expirarPendientes(ctx, cfg, time.Now())
			}
		}
	}()
}

func expirarPendientes(ctx context.Context, cfg ExpiracionCronConfig, now time.Time) int {
	n, err := cfg.Ventas.ExpirarPendientes(ctx, now.Add(-cfg.TTL))
	if err != nil {
		log.Error().Err(err).Int("expiradas", n).Msg("expiracion_cron: some sales could not be expired")
	}
	if n > 0 {
		log.Info().Int("expiradas", n).Msg("expiracion_cron: reservations released")
	}
	return n
}
