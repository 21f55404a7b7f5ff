package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"shortly-go/internal/apperrors"
	"shortly-go/internal/dto"
	"shortly-go/internal/service"
)

// CreateShortLinkHandler 创建短链（POST /shorten）
func CreateShortLinkHandler(c *gin.Context) {
	var req dto.CreateShortLinkRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		// 记录请求上下文（方法、路径）
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(bindingError(err))
		return
	}

	shortCode, err := service.CreateShortLink(c.Request.Context(), req)
	if err != nil {
		// 记录关键业务参数和错误上下文
		zap.L().Warn("Short link creation failed",
			zap.Error(err),
			zap.String("custom_code", req.CustomCode),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateShortLinkResponse{ShortCode: shortCode})
}

// bindingError 把 binding 校验错误映射到错误分类
// originalUrl 的问题归为 InvalidUrl，customCode 的归为 InvalidAlias
func bindingError(err error) *apperrors.AppError {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			switch e.Field() {
			case "OriginalURL":
				return apperrors.InvalidURL()
			case "CustomCode":
				return apperrors.InvalidAlias()
			}
		}
	}
	return apperrors.InvalidRequestErrorDefault()
}

// RedirectToTargetURLHandler 短码重定向（NoRoute 兜底，处理 GET /{code}）
func RedirectToTargetURLHandler(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.Status(http.StatusNotFound)
		return
	}

	// 提取路径作为短码（去掉前导 '/'）
	shortCode := strings.TrimPrefix(c.Request.URL.Path, "/")

	shortLink, err := service.ResolveShortLink(c.Request.Context(), shortCode)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// 302 响应禁止缓存，确保每次访问都回到这里计一次点击
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Redirect(http.StatusFound, shortLink.TargetURL)
}

// FaviconHandler 浏览器会自动请求 /favicon.ico，直接 204，
// 避免当成短码走重定向逻辑
func FaviconHandler(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ListShortLinksHandler 分页查询短链列表（GET /api/links）
func ListShortLinksHandler(c *gin.Context) {
	// 获取分页参数
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "10")
	shortCode := c.Query("shortCode")

	// 参数转换
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	// 调用服务层
	pageResp, err := service.ListShortLinks(c.Request.Context(), page, size, shortCode)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, pageResp)
}
