package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity plus the sequence store breaker; never
// exposes credentials or internals. rdb may be nil when Redis is not used.
func Health(db *gorm.DB, rdb *redis.Client, seqCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				redisStatus = "error"
			}
		}

		breaker := "closed"
		if seqCB != nil {
			breaker = seqCB.State().String()
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus == "error" || breaker == infra.CBOpen.String() {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":               status == http.StatusOK,
			"db":               dbStatus,
			"redis":            redisStatus,
			"sequence_breaker": breaker,
		})
	}
}
