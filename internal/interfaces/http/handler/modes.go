package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aidanna-learn-api/internal/domain/mode"
)

// ModeHandler 模式注册表查询处理器
type ModeHandler struct{}

// NewModeHandler 创建模式处理器
func NewModeHandler() *ModeHandler {
	return &ModeHandler{}
}

// ListModes 列出全部模式
// 响应体即注册表的定义顺序映射
// @Summary 列出内容模式
// @Produce json
// @Success 200
// @Router /modes [get]
func (h *ModeHandler) ListModes(c *gin.Context) {
	c.JSON(http.StatusOK, mode.All())
}
