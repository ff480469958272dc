package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Crissancio/Backend-Taller/internal/infra"
	"github.com/Crissancio/Backend-Taller/internal/model"
	"github.com/Crissancio/Backend-Taller/internal/repository"
	"github.com/Crissancio/Backend-Taller/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity and reports the event pipeline backlog;
// never exposes credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, outbox repository.OutboxRepository, breakers ...*infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		eventos := gin.H{}
		if dbStatus == "connected" {
			for _, estado := range []string{model.OutboxPendiente, model.OutboxFallido} {
				if n, err := outbox.CountByEstado(ctx, estado); err == nil {
					eventos[estado] = n
				}
			}
		}
		dlq := gin.H{}
		if redisStatus == "connected" {
			for _, q := range worker.Queues() {
				if n, err := worker.DLQLength(ctx, rdb, q); err == nil {
					dlq[q] = n
				}
			}
		}
		circuitos := gin.H{}
		for _, cb := range breakers {
			if cb != nil {
				circuitos[cb.Name()] = cb.State().String()
			}
		}

		c.JSON(status, gin.H{
			"ok":        status == http.StatusOK,
			"db":        dbStatus,
			"redis":     redisStatus,
			"outbox":    eventos,
			"dlq":       dlq,
			"circuitos": circuitos,
		})
	}
}
