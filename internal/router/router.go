package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/clinicdesk/booking-api/internal/handler"
	"github.com/clinicdesk/booking-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	Timeout   time.Duration
	CORS      middleware.CORSConfig
}

func DefaultConfig() Config {
	return Config{
		RateLimit: 50,
		RateBurst: 100,
		Timeout:   30 * time.Second,
		CORS:      middleware.DefaultCORSConfig(),
	}
}

type Router struct {
	engine  *gin.Engine
	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func newRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by path and method",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by path, method and status",
		}, []string{"path", "method", "status"}),
	}
}

func (m *routerMetrics) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requestDuration.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
		m.requestTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func New(cfg Config, h *handler.Handler, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	metrics := newRouterMetrics()
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  cfg.RateLimit,
		Burst: cfg.RateBurst,
	})

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.CORS(cfg.CORS),
		middleware.Timeout(middleware.TimeoutConfig{Duration: cfg.Timeout}),
		limiter.Handle(),
		metrics.handler(),
	)

	engine.GET("/healthz", h.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api/v1")
	for _, hdl := range handlers {
		hdl.RegisterRoutes(api)
	}

	return &Router{engine: engine, metrics: metrics}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
