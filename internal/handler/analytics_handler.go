package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shortly-go/internal/service"
)

// GetAnalyticsHandler 查询短链分析快照（GET /analytics/:code）
// 响应体与前端约定一致：{"totalClicks": n, "clicksByDay": [{"date","clicks"}...]}
func GetAnalyticsHandler(c *gin.Context) {
	shortCode := c.Param("code")

	snapshot, err := service.GetAnalytics(c.Request.Context(), shortCode)
	if err != nil {
		zap.L().Info("Analytics lookup failed",
			zap.String("short_code", shortCode),
			zap.Error(err))
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
