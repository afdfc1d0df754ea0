// Package middleware 提供 HTTP 中间件
package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// CORS 跨域中间件
// 中间件先于业务逻辑执行，成功与失败路径的响应都带 CORS 头；
// 预检 OPTIONS 请求由中间件直接应答，不进入处理器
// 策略：通配来源（源服务中通配 + 显式列表并存的矛盾配置在此收敛为通配），
// 通配与凭证组合非法，故 AllowCredentials 恒为 false
func CORS(cfg CORSConfig) gin.HandlerFunc {
	// 设置默认值
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if len(cfg.AllowedMethods) == 0 {
		cfg.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.AllowedHeaders) == 0 {
		cfg.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	}

	return cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     cfg.AllowedMethods,
		AllowHeaders:     cfg.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	})
}
