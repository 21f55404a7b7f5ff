package constant

import (
	"fmt"
	"time"
)

// 常量定义
const (
	BasePrefix = "shortly:"
	Separator  = ":"
)

// Redis 键模板
const (
	LinkCache   = BasePrefix + "link" + Separator + "%s"   // shortly:link:shortcode
	DailyClicks = BasePrefix + "clicks" + Separator + "%s" // shortly:clicks:yyyy-MM-dd（hash field 为 shortcode）
	TotalClicks = BasePrefix + "total_clicks" + Separator + "%s"
)

// DailyKeyTTL 每日点击 hash 的过期时间（保留 14 天，覆盖 7 天分析窗口）
const DailyKeyTTL = 14 * 24 * 3600

// GetLinkCacheKey 生成短链缓存 key
func GetLinkCacheKey(shortCode string) string {
	return fmt.Sprintf(LinkCache, shortCode)
}

// GetDateKey 生成当前日期的键（UTC，格式：yyyy-MM-dd，与分析分桶保持一致）
func GetDateKey() string {
	return time.Now().UTC().Format("2006-01-02")
}

// GetDailyClicksKey 生成每日点击键（格式：shortly:clicks:yyyy-MM-dd）
func GetDailyClicksKey(date string) string {
	return fmt.Sprintf(DailyClicks, date)
}

// GetTotalClicksKey 生成总点击键（格式：shortly:total_clicks:shortcode）
func GetTotalClicksKey(shortCode string) string {
	return fmt.Sprintf(TotalClicks, shortCode)
}
