package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailcrm/backend/internal/infrastructure/logger"
	"github.com/retailcrm/backend/internal/interfaces/http/middleware"
)

// EngineConfig carries what the global middleware chain needs
type EngineConfig struct {
	Logger         *zap.Logger
	Tracing        middleware.TracingConfig
	CORS           middleware.CORSConfig
	MaxBodyBytes   int64
	TrustedProxies []string
}

// NewEngine builds a gin engine with the global middleware chain. Order:
// recovery, request id, access log, tracing, security headers, CORS, body limit.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(cfg.Logger))
	engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	return engine, nil
}

// Setup mounts the health endpoint and the authenticated API on engine
func Setup(engine *gin.Engine, h Handlers, auth gin.HandlerFunc, opts ...RouterOption) *Router {
	engine.GET("/health", h.System.Health)

	apiMiddleware := []gin.HandlerFunc{auth, middleware.TracingAttributeInjector()}
	r := NewRouter(engine, append([]RouterOption{WithAPIMiddleware(apiMiddleware...)}, opts...)...)
	for _, group := range APIGroups(h) {
		r.Register(group)
	}
	r.Setup()
	return r
}
