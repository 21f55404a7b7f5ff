package service

import (
	"context"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"shortly-go/constant"
	"shortly-go/internal/model"
	"shortly-go/internal/repository"
	"shortly-go/pkg/logging"
)

// RecordClickCounters 在 Redis 里累加当日与总点击计数
// 计数器只是解析路径上的快速汇总，事实来源始终是 click_events 表
func RecordClickCounters(conn redis.Conn, shortCode string) {
	dailyKey := constant.GetDailyClicksKey(constant.GetDateKey())

	if _, err := conn.Do("HINCRBY", dailyKey, shortCode, 1); err != nil {
		logging.Logger.Error("Failed to record daily clicks",
			zap.String("key", dailyKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}

	if _, err := conn.Do("EXPIRE", dailyKey, constant.DailyKeyTTL); err != nil {
		logging.Logger.Error("Failed to set daily clicks expire",
			zap.String("key", dailyKey),
			zap.Error(err))
	}

	totalKey := constant.GetTotalClicksKey(shortCode)
	if _, err := conn.Do("INCR", totalKey); err != nil {
		logging.Logger.Error("Failed to record total clicks",
			zap.String("key", totalKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}

// GetDailyClicks 获取某日期的短链点击量
func GetDailyClicks(conn redis.Conn, shortCode string, date string) (int64, error) {
	dailyKey := constant.GetDailyClicksKey(date)

	reply, err := conn.Do("HGET", dailyKey, shortCode)
	if err != nil {
		logging.Logger.Error("Failed to get daily clicks",
			zap.String("key", dailyKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
		return 0, err
	}
	if reply == nil {
		return 0, nil
	}

	return redis.Int64(reply, err)
}

// GetTotalClicks 获取短链的总点击量
func GetTotalClicks(conn redis.Conn, shortCode string) (int64, error) {
	totalKey := constant.GetTotalClicksKey(shortCode)

	reply, err := conn.Do("GET", totalKey)
	if err != nil {
		logging.Logger.Error("Failed to get total clicks",
			zap.String("key", totalKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
		return 0, err
	}
	if reply == nil {
		return 0, nil
	}

	return redis.Int64(reply, err)
}

// StatisticalData 定时任务：把当日计数固化到 daily_stats，
// 并回写 short_links.total_clicks 供管理端列表展示
// 分析接口不依赖这里的结果，任务失败只影响列表上的汇总列
func StatisticalData() error {
	logging.Logger.Info("StatisticalData start")

	var links []model.ShortLink
	if err := repository.DB.Find(&links).Error; err != nil {
		logging.Logger.Error("Failed to load short links", zap.Error(err))
		return err
	}

	today := time.Now().UTC().Format("2006-01-02")
	for _, link := range links {
		doStatisticalData(link, today)
	}

	logging.Logger.Info("StatisticalData end")
	return nil
}

func doStatisticalData(shortLink model.ShortLink, today string) {
	ctx := context.Background()

	dailyClicks, totalClicks, err := loadClickCounts(ctx, shortLink.ShortCode, today)
	if err != nil {
		logging.Logger.Error("Failed to load click counts",
			zap.String("short_code", shortLink.ShortCode),
			zap.Error(err))
		return
	}

	// 更新数据库中的每日统计（DailyStat）
	dailyStat := &model.DailyStat{
		ShortLinkID: shortLink.ID,
		Date:        today,
		Clicks:      dailyClicks,
	}

	db := repository.DB.Where("short_link_id = ? AND date = ?", shortLink.ID, today).
		Assign("clicks", dailyClicks).
		FirstOrCreate(dailyStat)
	if db.Error != nil {
		logging.Logger.Error("Failed to insert or update daily stat",
			zap.Uint("short_link_id", shortLink.ID),
			zap.String("date", today),
			zap.Int64("clicks", dailyClicks),
			zap.Error(db.Error))
	}

	// 回写总点击数
	if err := repository.DB.Model(&model.ShortLink{}).
		Where("id = ?", shortLink.ID).
		Update("total_clicks", totalClicks).Error; err != nil {
		logging.Logger.Error("Failed to update total clicks",
			zap.Uint("id", shortLink.ID),
			zap.Int64("total_clicks", totalClicks),
			zap.Error(err))
	}
}

// loadClickCounts 优先读 Redis 计数器，缓存关闭时直接数事件表
func loadClickCounts(ctx context.Context, shortCode string, today string) (int64, int64, error) {
	if repository.CacheEnabled() {
		conn := repository.RedisPool.Get()
		defer closeRedisConn(conn)

		dailyClicks, err := GetDailyClicks(conn, shortCode, today)
		if err != nil {
			return 0, 0, err
		}
		totalClicks, err := GetTotalClicks(conn, shortCode)
		if err != nil {
			return 0, 0, err
		}
		return dailyClicks, totalClicks, nil
	}

	dayStart, _ := time.ParseInLocation("2006-01-02", today, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var dailyClicks int64
	if err := repository.DB.WithContext(ctx).Model(&model.ClickEvent{}).
		Where("short_code = ? AND occurred_at >= ? AND occurred_at < ?", shortCode, dayStart, dayEnd).
		Count(&dailyClicks).Error; err != nil {
		return 0, 0, err
	}

	var totalClicks int64
	if err := repository.DB.WithContext(ctx).Model(&model.ClickEvent{}).
		Where("short_code = ?", shortCode).
		Count(&totalClicks).Error; err != nil {
		return 0, 0, err
	}

	return dailyClicks, totalClicks, nil
}
