// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"aidanna-learn-api/internal/application/generation"
	"aidanna-learn-api/internal/config"
	"aidanna-learn-api/internal/interfaces/http/handler"
	"aidanna-learn-api/internal/interfaces/http/middleware"
)

// Router HTTP 路由器
type Router struct {
	engine  *gin.Engine
	cfg     *config.Config
	gateway generation.Completer
}

// New 创建新的路由器
func New(cfg *config.Config, gateway generation.Completer) *Router {
	// 设置 Gin 模式
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:  engine,
		cfg:     cfg,
		gateway: gateway,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	// 基础中间件
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	// CORS 中间件：先于处理器执行，错误响应同样带 CORS 头
	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	// 追踪中间件
	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	// 指标中间件
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	systemHandler := handler.NewSystemHandler(r.gateway)
	modeHandler := handler.NewModeHandler()
	generateHandler := handler.NewGenerateHandler(r.cfg, r.gateway)

	// 系统端点
	r.engine.GET("/", systemHandler.Root)
	r.engine.GET("/health", systemHandler.Health)
	r.engine.GET("/live", systemHandler.Live)
	r.engine.GET("/ready", systemHandler.Ready)

	// Prometheus 指标端点
	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// 业务端点
	r.engine.GET("/modes", modeHandler.ListModes)
	r.engine.POST("/generate", generateHandler.Generate)
	r.engine.POST("/stream", generateHandler.Stream)
	r.engine.GET("/stream", generateHandler.Stream) // EventSource 兼容
}
