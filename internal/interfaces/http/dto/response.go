// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"github.com/gin-gonic/gin"

	apperrors "aidanna-learn-api/pkg/errors"
)

// ErrorResponse 错误响应结构
// 契约要求错误信息以 detail 字段原样返回
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// RootResponse 根路径响应
type RootResponse struct {
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status                string `json:"status"`
	HasUpstreamConfigured bool   `json:"has_upstream_configured"`
}

// Error 返回错误响应
func Error(c *gin.Context, httpCode int, detail string) {
	c.JSON(httpCode, ErrorResponse{Detail: detail})
}

// BadRequest 返回 400 错误
func BadRequest(c *gin.Context, detail string) {
	Error(c, 400, detail)
}

// InternalError 返回 500 错误
func InternalError(c *gin.Context, detail string) {
	Error(c, 500, detail)
}

// WriteAppError 按错误码映射的状态码写出应用错误
func WriteAppError(c *gin.Context, err *apperrors.AppError) {
	if err == nil {
		InternalError(c, "unknown error")
		return
	}
	Error(c, err.HTTPStatus, err.ClientMessage())
}
