package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/hospital-api/internal/handler/prometheus"
	"github.com/jwalitptl/hospital-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler mounts public and token-guarded auth routes
type AuthHandler interface {
	RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc)
}

type Handlers struct {
	Patient     Handler
	Doctor      Handler
	Appointment Handler
	Health      Handler
	Auth        AuthHandler
}

type RouterConfig struct {
	Mode         string
	BasePath     string
	Timeout      time.Duration
	MaxBodyBytes int64

	RateLimitEnabled bool
	RateLimit        rate.Limit
	RateBurst        int
	RateTTL          time.Duration

	CORSConfig middleware.CORSConfig
	// AuthRequired guards the patient, doctor and appointment routes
	AuthRequired bool
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	metrics *prometheus.Handler
	h       Handlers
	config  RouterConfig
}

func NewRouter(auth *middleware.AuthMiddleware, metrics *prometheus.Handler, h Handlers, config RouterConfig, logger *zerolog.Logger) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	if config.BasePath == "" {
		config.BasePath = "/api"
	}

	engine := gin.New()

	r := &Router{
		engine:  engine,
		auth:    auth,
		metrics: metrics,
		h:       h,
		config:  config,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		metrics.Middleware(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	sizeLimit := middleware.DefaultSizeLimitConfig()
	if config.MaxBodyBytes > 0 {
		sizeLimit.MaxBodySize = config.MaxBodyBytes
	}
	engine.Use(middleware.SizeLimit(sizeLimit))

	if config.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
			TTL:   config.RateTTL,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	engine.NoRoute(middleware.NotFound())
	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.metrics.Handler())

	api := r.engine.Group(r.config.BasePath)
	r.h.Health.RegisterRoutes(api)
	r.h.Auth.RegisterRoutes(api, r.auth.Authenticate())

	resources := api.Group("")
	resources.Use(r.auth.Optional(r.config.AuthRequired))
	r.h.Patient.RegisterRoutes(resources)
	r.h.Doctor.RegisterRoutes(resources)
	r.h.Appointment.RegisterRoutes(resources)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
