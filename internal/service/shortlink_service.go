package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shortly-go/constant"
	"shortly-go/internal/apperrors"
	"shortly-go/internal/dto"
	"shortly-go/internal/model"
	"shortly-go/internal/repository"
	"shortly-go/pkg/logging"
	"shortly-go/pkg/utils"
	"shortly-go/response"
)

// 随机短码生成的碰撞重试上限
// 62^6 的码空间下连续碰撞 10 次几乎不可能，属于防御性兜底
const maxGenerateAttempts = 10

// CreateShortLink 创建短链，返回最终短码
// 唯一性完全依赖 short_code 唯一索引的原子插入：
// 并发竞争同一短码时恰好一个成功，其余拿到 gorm.ErrDuplicatedKey
func CreateShortLink(ctx context.Context, req dto.CreateShortLinkRequest) (string, error) {
	// 校验在任何写入之前，失败无副作用
	if appErr := req.Validate(); appErr != nil {
		return "", appErr
	}

	// 自定义短码：占用即冲突，绝不覆盖或加后缀
	if req.CustomCode != "" {
		shortLink := &model.ShortLink{
			ShortCode:   req.CustomCode,
			TargetURL:   req.OriginalURL,
			CustomAlias: true,
		}
		if err := repository.DB.WithContext(ctx).Create(shortLink).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return "", apperrors.AliasTaken()
			}
			logging.Logger.Error("Failed to insert short link",
				zap.String("short_code", req.CustomCode),
				zap.Error(err))
			return "", apperrors.StoreUnavailable(err)
		}
		invalidateLinkCache(req.CustomCode)
		return req.CustomCode, nil
	}

	// 随机生成：碰撞就换一个新码重试
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		code := utils.GenerateShortCode()
		shortLink := &model.ShortLink{
			ShortCode: code,
			TargetURL: req.OriginalURL,
		}

		err := repository.DB.WithContext(ctx).Create(shortLink).Error
		if err == nil {
			invalidateLinkCache(code)
			return code, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			logging.Logger.Warn("Short code collision, retrying",
				zap.String("short_code", code),
				zap.Int("attempt", attempt+1))
			continue
		}
		logging.Logger.Error("Failed to insert short link",
			zap.String("short_code", code),
			zap.Error(err))
		return "", apperrors.StoreUnavailable(err)
	}

	return "", apperrors.GenerationExhausted()
}

// ResolveShortLink 解析短码并记录一次点击
// 命中走 Redis 缓存，未命中回源数据库并回填；
// 不存在的短码不产生任何点击事件
func ResolveShortLink(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	if err := utils.ValidateShortCode(shortCode); err != nil {
		return nil, apperrors.NotFound()
	}

	shortLink, err := lookupShortLink(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	recordClick(shortCode)

	return shortLink, nil
}

func lookupShortLink(ctx context.Context, shortCode string) (*model.ShortLink, error) {
	if !repository.CacheEnabled() {
		return lookupFromDB(ctx, shortCode, nil)
	}

	cacheKey := constant.GetLinkCacheKey(shortCode)
	conn := repository.RedisPool.Get()
	defer closeRedisConn(conn)

	// 从 Redis 中查询缓存
	cachedValue, err := redis.Bytes(conn.Do("GET", cacheKey))
	if err == nil {
		// 空值是缓存穿透保护，表示短码确认不存在
		if len(cachedValue) == 0 {
			return nil, apperrors.NotFound()
		}
		var shortLink model.ShortLink
		if err := json.Unmarshal(cachedValue, &shortLink); err == nil {
			return &shortLink, nil
		}
		logging.Logger.Warn("Failed to unmarshal cached value",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	} else if err != redis.ErrNil {
		logging.Logger.Warn("Error getting from Redis",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}

	return lookupFromDB(ctx, shortCode, conn)
}

// lookupFromDB 回源数据库，conn 不为空时回填缓存
func lookupFromDB(ctx context.Context, shortCode string, conn redis.Conn) (*model.ShortLink, error) {
	var shortLink model.ShortLink
	result := repository.DB.WithContext(ctx).Where("short_code = ?", shortCode).First(&shortLink)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			logging.Logger.Error("Failed to query short link",
				zap.String("short_code", shortCode),
				zap.Error(result.Error))
			return nil, apperrors.StoreUnavailable(result.Error)
		}

		// 缓存空值，防止缓存穿透
		if conn != nil {
			cacheKey := constant.GetLinkCacheKey(shortCode)
			if _, err := conn.Do("SET", cacheKey, "", "EX", 300); err != nil {
				logging.Logger.Error("Failed to set cache",
					zap.String("cache_key", cacheKey),
					zap.Error(err))
			}
		}
		return nil, apperrors.NotFound()
	}

	// 缓存结果（1小时）
	if conn != nil {
		cacheKey := constant.GetLinkCacheKey(shortCode)
		cachedValue, _ := json.Marshal(shortLink)
		if _, err := conn.Do("SET", cacheKey, cachedValue, "EX", 3600); err != nil {
			logging.Logger.Error("Failed to set cache",
				zap.String("cache_key", cacheKey),
				zap.Error(err))
		}
	}

	return &shortLink, nil
}

// invalidateLinkCache 插入成功后删掉该短码的缓存键
// 解析路径会给不存在的短码缓存 300 秒空值，不清掉的话
// 刚创建的短链在空值过期前会一直解析成 NotFound
func invalidateLinkCache(shortCode string) {
	if !repository.CacheEnabled() {
		return
	}

	conn := repository.RedisPool.Get()
	defer closeRedisConn(conn)

	cacheKey := constant.GetLinkCacheKey(shortCode)
	if _, err := conn.Do("DEL", cacheKey); err != nil {
		logging.Logger.Warn("Failed to delete link cache",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}
}

// recordClick 一次成功解析恰好产生一条点击事件
// 事件表是分析数据的事实来源，Redis 计数器只是快速汇总
func recordClick(shortCode string) {
	Clicks.Record(shortCode, time.Now().UTC())

	if repository.CacheEnabled() {
		conn := repository.RedisPool.Get()
		defer closeRedisConn(conn)
		RecordClickCounters(conn, shortCode)
	}
}

// ListShortLinks 支持分页查询短链列表
func ListShortLinks(ctx context.Context, page, size int, shortCode string) (*response.PageResponse[model.ShortLink], error) {
	// 参数校验
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10 // 默认每页10条，最大100条
	}

	// 构建查询条件
	db := repository.DB.WithContext(ctx).Model(&model.ShortLink{})
	if shortCode != "" {
		db = db.Where("short_code LIKE ?", "%"+shortCode+"%")
	}

	// 查询总记录数
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	// 如果总数为0，直接返回空结果，不执行分页查询
	if total == 0 {
		return &response.PageResponse[model.ShortLink]{
			Page:      page,
			Size:      size,
			Total:     0,
			TotalPage: 0,
			List:      []model.ShortLink{},
		}, nil
	}

	// 查询分页数据
	var links []model.ShortLink
	if err := db.
		Limit(size).
		Offset((page - 1) * size).
		Order("id DESC").
		Find(&links).Error; err != nil {
		logging.Logger.Error("Failed to list short links", zap.Error(err))
		return nil, apperrors.StoreUnavailable(err)
	}

	// 计算总页数
	totalPage := (int(total) + size - 1) / size

	return &response.PageResponse[model.ShortLink]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      links,
	}, nil
}

func closeRedisConn(conn redis.Conn) {
	if err := conn.Close(); err != nil {
		logging.Logger.Error("Failed to close Redis connection",
			zap.Error(err),
			zap.String("connection_type", "redis"),
		)
	}
}
