package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shortly-go/internal/apperrors"
	"shortly-go/internal/dto"
	"shortly-go/internal/model"
	"shortly-go/internal/repository"
	"shortly-go/pkg/logging"
)

// 分析窗口：最近 7 个自然日（UTC），按日历日分桶而不是滑动 24 小时
const analyticsWindowDays = 7

// GetAnalytics 生成分析快照：全量总点击数 + 近 7 天按日分桶
// 短码不存在返回 NotFound；存在但没有点击返回空快照而不是错误
// 快照每次从事件表重新计算，不独立持久化
func GetAnalytics(ctx context.Context, shortCode string) (*dto.AnalyticsResponse, error) {
	var shortLink model.ShortLink
	if err := repository.DB.WithContext(ctx).Where("short_code = ?", shortCode).First(&shortLink).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound()
		}
		logging.Logger.Error("Failed to query short link for analytics",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return nil, apperrors.StoreUnavailable(err)
	}

	clicksByDay, err := clicksByDaySince(ctx, shortCode, windowStart(time.Now().UTC()))
	if err != nil {
		return nil, err
	}

	// 总点击数不限窗口，而且必须在窗口扫描之后统计：
	// 两次读之间提交的点击只会让 totalClicks 偏大，
	// 不会出现窗口合计超过总数的撕裂快照
	var totalClicks int64
	if err := repository.DB.WithContext(ctx).Model(&model.ClickEvent{}).
		Where("short_code = ?", shortCode).
		Count(&totalClicks).Error; err != nil {
		logging.Logger.Error("Failed to count click events",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return nil, apperrors.StoreUnavailable(err)
	}

	return &dto.AnalyticsResponse{
		TotalClicks: totalClicks,
		ClicksByDay: clicksByDay,
	}, nil
}

// windowStart 窗口起点：含当天在内往前数 7 个自然日的 0 点（UTC）
func windowStart(now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -(analyticsWindowDays - 1))
}

// clicksByDaySince 扫描窗口内的事件并按 UTC 日历日分桶
// 只返回有点击的日期，按日期升序；日期格式固定 yyyy-MM-dd，
// 前端同时用它做图表轴和表格 key
func clicksByDaySince(ctx context.Context, shortCode string, since time.Time) ([]dto.DayClicks, error) {
	var events []model.ClickEvent
	if err := repository.DB.WithContext(ctx).
		Where("short_code = ? AND occurred_at >= ?", shortCode, since).
		Find(&events).Error; err != nil {
		logging.Logger.Error("Failed to load click events",
			zap.String("short_code", shortCode),
			zap.Error(err))
		return nil, apperrors.StoreUnavailable(err)
	}

	buckets := make(map[string]int64)
	for _, ev := range events {
		buckets[ev.OccurredAt.UTC().Format("2006-01-02")]++
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	// 空状态返回空切片而不是 nil，JSON 序列化成 [] 而不是 null
	clicksByDay := make([]dto.DayClicks, 0, len(dates))
	for _, date := range dates {
		clicksByDay = append(clicksByDay, dto.DayClicks{
			Date:   date,
			Clicks: buckets[date],
		})
	}

	return clicksByDay, nil
}
