package repository

import (
	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"shortly-go/internal/model"
	"shortly-go/pkg/logging"
)

var DB *gorm.DB

// InitDB 初始化数据库连接并执行迁移
// db.driver 支持 mysql（线上）和 sqlite（本地开发 / 测试）
// TranslateError 必须开启：唯一索引冲突要翻译成 gorm.ErrDuplicatedKey，
// 短码的原子插入语义依赖这个错误
func InitDB(logger *zap.Logger, atomicLogLevel zap.AtomicLevel) {
	cfg := &gorm.Config{
		Logger:         logging.NewGormLogger(logger, logging.ToGormLogLevel(atomicLogLevel.Level())),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)

	switch viper.GetString("db.driver") {
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(viper.GetString("db.dsn")), cfg)
	default:
		db, err = gorm.Open(mysql.Open(viper.GetString("db.dsn")), cfg)
	}
	if err != nil {
		logging.Logger.Fatal("Failed to connect database", zap.Error(err))
	}

	if err := Migrate(db); err != nil {
		logging.Logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	DB = db
}

// Migrate 执行表结构迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.ShortLink{}, &model.ClickEvent{}, &model.DailyStat{})
}
