package handler

import (
	"net/http"
	"strconv"

	"github.com/Crissancio/Backend-Taller/internal/apierror"
	"github.com/Crissancio/Backend-Taller/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// ListarDLQ GET /v1/sistema/dlq?limit=50 (superadmin): parked jobs per queue.
func ListarDLQ(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := int64(50)
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n < 1 || n > 500 {
				c.JSON(http.StatusBadRequest, apierror.New("limit debe estar entre 1 y 500"))
				return
			}
			limit = n
		}
		out := make(map[string][]worker.DLQEntry)
		for _, q := range worker.Queues() {
			entries, err := worker.ListDLQ(c.Request.Context(), rdb, q, limit)
			if err != nil {
				respondError(c, err)
				return
			}
			out[q] = entries
		}
		c.JSON(http.StatusOK, out)
	}
}
