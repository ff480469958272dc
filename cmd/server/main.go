package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/config"
	"github.com/Crissancio/Backend-Taller/internal/infra"
	"github.com/Crissancio/Backend-Taller/internal/router"
	"github.com/Crissancio/Backend-Taller/internal/worker"
	"github.com/Crissancio/Backend-Taller/internal/ws"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const expiracionInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Env == "development")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)

	svc := router.NewServices(cfg, db, rdb)
	dispatcher := worker.NewDispatcher(rdb)

	// Worker handlers are wired here (composition root) so that the pool
	// has full access to all infrastructure dependencies.
	handlers := map[string]worker.JobHandler{}
	var correo worker.EmailEncolador
	smtpCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))
	if mailer := infra.NewMailer(cfg); mailer != nil {
		handlers[worker.JobEmail] = worker.NewEmailWorker(mailer, smtpCB, svc.NotificacionRepo)
		correo = dispatcher
	} else {
		log.Warn().Msg("SMTP_HOST not set: email notifications disabled")
	}
	handlers[worker.JobEvento] = worker.NewNotificacionWorker(svc.UsuarioRepo, svc.NotificacionRepo, svc.Notificaciones, hub, correo)
	worker.NewPool(rdb, handlers).Start(ctx, cfg.WorkerPoolSize)

	relayCfg := worker.OutboxRelayConfig{
		Repo:        svc.OutboxRepo,
		Encolador:   dispatcher,
		RDB:         rdb,
		Interval:    time.Duration(cfg.OutboxPollSeconds) * time.Second,
		BatchSize:   cfg.OutboxBatchSize,
		MaxIntentos: cfg.OutboxMaxIntentos,
	}
	breakers := []*infra.CircuitBreaker{smtpCB}
	publisher := infra.NewEventPublisher(cfg.KafkaBrokerList(), cfg.KafkaTopic)
	if publisher != nil {
		relayCfg.Sink = publisher
		breakers = append(breakers, publisher.Breaker())
		defer publisher.Close()
	}
	worker.NewOutboxRelay(relayCfg).Start(ctx)

	worker.StartExpiracionCron(ctx, worker.ExpiracionCronConfig{
		Ventas:   svc.Ventas,
		TTL:      time.Duration(cfg.ReservaTTLHoras) * time.Hour,
		Interval: expiracionInterval,
	})

	r := router.New(ctx, cfg, db, rdb, hub, svc, breakers...)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("microerp backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
