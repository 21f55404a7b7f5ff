package apperrors

import (
	"net/http"
)

// AppError 自定义错误类型
// Message 存放 i18n message ID，在全局错误中间件中本地化
type AppError struct {
	Code    int
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode 创建通用业务错误
func WithCode(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// InvalidURL 目标 URL 非法（必须是 http/https 绝对地址）
func InvalidURL() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_url")
}

// InvalidAlias 自定义短码非法（字符集或长度不符合要求）
func InvalidAlias() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_alias")
}

// AliasTaken 自定义短码已被占用
func AliasTaken() *AppError {
	return WithCode(http.StatusConflict, "error.alias_taken")
}

// GenerationExhausted 连续碰撞超过重试上限（正常规模下不应出现）
func GenerationExhausted() *AppError {
	return WithCode(http.StatusInternalServerError, "error.generation_exhausted")
}

// NotFound 短码不存在（正常业务结果，不是系统故障）
func NotFound() *AppError {
	return WithCode(http.StatusNotFound, "error.not_found")
}

// StoreUnavailable 持久层不可用，调用方可重试
func StoreUnavailable(cause error) *AppError {
	return &AppError{
		Code:    http.StatusServiceUnavailable,
		Message: "error.store_unavailable",
		Cause:   cause,
	}
}

// InvalidRequestError 封装参数校验错误
func InvalidRequestError(message string) *AppError {
	return WithCode(http.StatusBadRequest, message)
}

// InvalidRequestErrorDefault 默认参数校验错误
func InvalidRequestErrorDefault() *AppError {
	return WithCode(http.StatusBadRequest, "error.invalid_request")
}
