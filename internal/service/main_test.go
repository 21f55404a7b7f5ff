package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shortly-go/internal/repository"
	"shortly-go/pkg/logging"
)

// setupTestEnv 用内存 SQLite 代替 MySQL，缓存关闭走纯数据库路径
// SQLite 的唯一索引同样会被翻译成 gorm.ErrDuplicatedKey，
// 原子插入语义和线上一致
func setupTestEnv(t *testing.T) *gorm.DB {
	t.Helper()

	logging.InitTestLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	// 内存库每个连接是独立数据库，必须收紧到单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repository.Migrate(db))

	repository.DB = db
	repository.RedisPool = nil

	InitClickRecorder(db)
	t.Cleanup(func() {
		Clicks.Close()
	})

	return db
}
