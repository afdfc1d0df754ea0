// Package errors 提供统一的错误定义
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess       ErrorCode = "0"
	CodeUnknown       ErrorCode = "1000"
	CodeInvalidParam  ErrorCode = "1001"
	CodeInternalError ErrorCode = "1002"

	// 请求校验错误 (2xxx)
	CodeUnsupportedMode ErrorCode = "2001"
	CodeOutOfRange      ErrorCode = "2002"
	CodeFieldTooLong    ErrorCode = "2003"

	// 上游 LLM 错误 (3xxx)
	CodeUpstreamNotConfigured ErrorCode = "3001"
	CodeUpstreamError         ErrorCode = "3002"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息（返回副本，预定义错误不被污染）
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// ClientMessage 返回写入响应 detail 字段的文本
func (e *AppError) ClientMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeUnsupportedMode, CodeOutOfRange, CodeFieldTooLong:
		return http.StatusBadRequest
	case CodeUpstreamNotConfigured, CodeUpstreamError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam  = New(CodeInvalidParam, "invalid parameter")
	ErrInternalError = New(CodeInternalError, "internal server error")

	ErrUnsupportedMode = New(CodeUnsupportedMode, "unsupported mode")
	ErrOutOfRange      = New(CodeOutOfRange, "value out of range")
	ErrFieldTooLong    = New(CodeFieldTooLong, "field too long")

	ErrUpstreamNotConfigured = New(CodeUpstreamNotConfigured, "upstream LLM provider is not configured")
	ErrUpstreamError         = New(CodeUpstreamError, "upstream LLM call failed")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
