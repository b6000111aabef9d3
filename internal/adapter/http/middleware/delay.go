package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Delay holds every response for a fixed duration before the handler runs.
// Downstream POS clients expect the processing latency of the real
// terminal; the delay is unconditional and unrelated to actual work.
func Delay(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d > 0 {
			time.Sleep(d)
		}
		c.Next()
	}
}
