package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"aidanna-learn-api/internal/application/generation"
	"aidanna-learn-api/internal/config"
	"aidanna-learn-api/internal/interfaces/http/dto"
	apperrors "aidanna-learn-api/pkg/errors"
	"aidanna-learn-api/pkg/logger"
	"aidanna-learn-api/pkg/metrics"
)

// GenerateHandler 内容生成处理器
type GenerateHandler struct {
	cfg     *config.Config
	gateway generation.Completer
}

// NewGenerateHandler 创建内容生成处理器
func NewGenerateHandler(cfg *config.Config, gateway generation.Completer) *GenerateHandler {
	return &GenerateHandler{
		cfg:     cfg,
		gateway: gateway,
	}
}

// Generate 同步生成
// @Summary 同步生成学习内容
// @Accept json
// @Produce json
// @Success 200 {object} generation.CompletionResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req generation.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	in, appErr := req.Resolve(h.cfg.Generation.IncludeClosingNote)
	if appErr != nil {
		dto.WriteAppError(c, appErr)
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ModeKey, in.Mode.String())

	start := time.Now()
	result, err := h.gateway.CompleteSync(ctx, in)
	metrics.GenerationDuration.WithLabelValues(in.Mode.String(), "sync").Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GenerationTotal.WithLabelValues(in.Mode.String(), "sync", "error").Inc()
		appErr := apperrors.AsAppError(err)
		if appErr.Code != apperrors.CodeUpstreamNotConfigured {
			logger.Error(ctx, "completion failed", err)
		}
		dto.WriteAppError(c, appErr)
		return
	}

	metrics.GenerationTotal.WithLabelValues(in.Mode.String(), "sync", "ok").Inc()
	c.JSON(http.StatusOK, result)
}

// Stream SSE 流式生成
// 校验失败在进入 SSE 前以普通 JSON 错误返回；
// 流开启后的上游失败只能以 error 帧收尾
// @Summary SSE 流式生成学习内容
// @Accept json
// @Produce text/event-stream
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /stream [post]
func (h *GenerateHandler) Stream(c *gin.Context) {
	req, bindErr := h.bindStreamRequest(c)
	if bindErr != nil {
		dto.BadRequest(c, bindErr.Error())
		return
	}

	in, appErr := req.Resolve(h.cfg.Generation.IncludeClosingNote)
	if appErr != nil {
		dto.WriteAppError(c, appErr)
		return
	}

	// 凭证缺失快速失败，不进入 SSE 模式
	if h.gateway == nil || !h.gateway.Configured() {
		dto.WriteAppError(c, apperrors.ErrUpstreamNotConfigured)
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ModeKey, in.Mode.String())

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()

	start := time.Now()
	status := "ok"
	frames := h.gateway.CompleteStream(ctx, in)

	c.Stream(func(w io.Writer) bool {
		select {
		case frame, ok := <-frames:
			if !ok {
				return false
			}
			writeFrame(w, frame)
			metrics.StreamFramesTotal.WithLabelValues(frameType(frame)).Inc()
			if frame.Error != "" {
				status = "error"
			}
			return !frame.IsTerminal()

		case <-ctx.Done():
			// 客户端断开，网关侧协同取消
			status = "disconnected"
			return false
		}
	})

	metrics.GenerationTotal.WithLabelValues(in.Mode.String(), "stream", status).Inc()
	metrics.GenerationDuration.WithLabelValues(in.Mode.String(), "stream").Observe(time.Since(start).Seconds())
}

// writeFrame 按 `data: <json>\n\n` 的 SSE 行格式写出一帧
func writeFrame(w io.Writer, frame generation.StreamFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		payload = []byte(`{"error":"frame encoding failed"}`)
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

// frameType 帧类型标签
func frameType(frame generation.StreamFrame) string {
	switch {
	case frame.Error != "":
		return "error"
	case frame.Done:
		return "done"
	default:
		return "delta"
	}
}

// bindStreamRequest 绑定流式请求
// POST 走 JSON body；GET 兼容 EventSource 场景，仅支持 query 参数
func (h *GenerateHandler) bindStreamRequest(c *gin.Context) (*generation.GenerateRequest, error) {
	if c.Request.Method == http.MethodPost {
		var req generation.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, fmt.Errorf("invalid request body: %w", err)
		}
		return &req, nil
	}

	req := &generation.GenerateRequest{
		Mode:   strings.TrimSpace(c.Query("mode")),
		Prompt: strings.TrimSpace(c.Query("prompt")),
	}
	return req, nil
}
