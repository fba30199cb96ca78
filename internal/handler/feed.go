package handler

import (
	"encoding/json"
	"io"
	"time"

	"github.com/mrinmay27/the149-store/internal/feed"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// heartbeat keeps idle SSE connections from being reaped by proxies.
const heartbeat = 25 * time.Second

// Feed streams change events to clients over Server-Sent Events. Events carry
// only the stream name and entity id; clients refetch state through the REST
// endpoints rather than trusting event payloads.
func Feed(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		events, stop := feed.Subscribe(c.Request.Context(), rdb)
		defer stop()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Writer.Flush()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		c.Stream(func(w io.Writer) bool {
			select {
			case e, open := <-events:
				if !open {
					return false
				}
				data, err := json.Marshal(e)
				if err != nil {
					return true
				}
				c.SSEvent(e.Stream, string(data))
				return true
			case <-ticker.C:
				c.SSEvent("ping", time.Now().Unix())
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
