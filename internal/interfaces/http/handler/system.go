// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aidanna-learn-api/internal/application/generation"
	"aidanna-learn-api/internal/interfaces/http/dto"
)

// SystemHandler 系统端点处理器
type SystemHandler struct {
	gateway generation.Completer
}

// NewSystemHandler 创建系统端点处理器
func NewSystemHandler(gateway generation.Completer) *SystemHandler {
	return &SystemHandler{gateway: gateway}
}

// endpoints 根路径公布的路由清单
var endpoints = []string{
	"/",
	"/health",
	"/live",
	"/ready",
	"/modes",
	"/generate",
	"/stream",
}

// Root 根路径
// @Summary 服务信息
// @Produce json
// @Success 200 {object} dto.RootResponse
// @Router / [get]
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, dto.RootResponse{
		Message:   "Aidanna API is running",
		Endpoints: endpoints,
	})
}

// Health 健康检查接口
// 恒返回 200，不依赖上游可用性
// @Summary 健康检查
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:                "ok",
		HasUpstreamConfigured: h.gateway != nil && h.gateway.Configured(),
	})
}

// Live 存活检查接口
// @Summary 存活检查
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /live [get]
func (h *SystemHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type readinessCheck struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Ready 就绪检查接口
// 上游凭证是可选依赖，缺失只降级不拒流量
// @Summary 就绪检查
// @Produce json
// @Success 200
// @Router /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	upstream := &readinessCheck{Status: "ok"}
	if h.gateway == nil || !h.gateway.Configured() {
		upstream.Status = "disabled"
		upstream.Error = "upstream credential not configured"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": gin.H{"upstream": upstream},
	})
}
