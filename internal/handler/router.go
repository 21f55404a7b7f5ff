package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	thirdPartyI18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"shortly-go/internal/middleware"
)

// NewRouter 组装路由和中间件链，main 和集成测试共用
func NewRouter(bundle *thirdPartyI18n.Bundle) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 注册全局错误中间件
	r.Use(middleware.GlobalErrorMiddleware())
	r.Use(middleware.ZapGinLogger(zap.L()))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(bundle))

	r.POST("/shorten", CreateShortLinkHandler)
	r.GET("/analytics/:code", GetAnalyticsHandler)
	r.GET("/favicon.ico", FaviconHandler)

	api := r.Group("/api")
	{
		api.GET("/links", ListShortLinksHandler)
	}

	// 其余 GET 路径都按短码处理
	r.NoRoute(RedirectToTargetURLHandler)

	return r
}
