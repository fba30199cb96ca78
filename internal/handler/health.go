package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health checks the two stores the ledger cannot run without: postgres for
// the ledger itself, redis for the feed and the job queue. Degraded means
// the process is up but at least one dependency is not answering.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		checks := gin.H{
			"postgres": checkPostgres(ctx, db),
			"redis":    checkRedis(ctx, rdb),
		}

		status := http.StatusOK
		overall := "ok"
		for _, up := range checks {
			if up != "up" {
				status = http.StatusServiceUnavailable
				overall = "degraded"
			}
		}

		c.JSON(status, gin.H{"status": overall, "checks": checks})
	}
}

func checkPostgres(ctx context.Context, db *gorm.DB) string {
	sqlDB, err := db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		return "down"
	}
	return "up"
}

func checkRedis(ctx context.Context, rdb *redis.Client) string {
	if rdb.Ping(ctx).Err() != nil {
		return "down"
	}
	return "up"
}
