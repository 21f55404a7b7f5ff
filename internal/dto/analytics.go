package dto

// DayClicks 某一天的点击数
type DayClicks struct {
	Date   string `json:"date"` // yyyy-MM-dd（UTC）
	Clicks int64  `json:"clicks"`
}

// AnalyticsResponse 分析快照：总点击数 + 近 7 天按日分桶
// ClicksByDay 按日期升序，只包含有点击的日期
type AnalyticsResponse struct {
	TotalClicks int64       `json:"totalClicks"`
	ClicksByDay []DayClicks `json:"clicksByDay"`
}
