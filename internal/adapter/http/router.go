package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/realsagiza/POS-X-KF-API/internal/adapter/http/middleware"
	"github.com/realsagiza/POS-X-KF-API/internal/logging"
)

// NewRouter wires the API surface. The artificial response delay covers
// the health check and every /api/v1 route, not /metrics — Prometheus
// scrapes are not part of the emulated terminal latency.
func NewRouter(h *SaleHandler, responseDelay time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Metrics())
	r.Use(middleware.Logging(logging.New("http")))

	delay := middleware.Delay(responseDelay)

	r.GET("/", delay, h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1", delay)
	{
		v1.POST("/order", h.CreateOrder)
		v1.GET("/status", h.GetStatus)
		v1.PATCH("/cancel", h.CancelOrder)
		v1.PATCH("/cancel/:id", h.CancelOrder)
		v1.GET("/balances", h.GetBalances)
	}

	return r
}
