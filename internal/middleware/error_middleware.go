package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	thirdPartyI18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"shortly-go/internal/apperrors"
	"shortly-go/internal/i18n"
	"shortly-go/response"
)

// GlobalErrorMiddleware 全局错误中间件
// handler 通过 c.Error 上报 AppError，这里统一本地化并写出 {"error": "..."}
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// 如果有错误发生
		if len(c.Errors) > 0 {
			localizer := localizerFromContext(c)

			for _, err := range c.Errors {
				var appErr *apperrors.AppError
				if errors.As(err.Err, &appErr) {
					c.AbortWithStatusJSON(appErr.Code, response.Error(i18n.Localize(localizer, appErr.Message)))
					return
				}
			}

			// 默认处理未定义的错误
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(i18n.Localize(localizer, "error.internal")))
			return
		}
	}
}

func localizerFromContext(c *gin.Context) *thirdPartyI18n.Localizer {
	if v, ok := c.Get(i18n.LocalizerContextKey); ok {
		if localizer, ok := v.(*thirdPartyI18n.Localizer); ok {
			return localizer
		}
	}
	return nil
}
