package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"shortly-go/internal/handler"
	"shortly-go/internal/i18n"
	"shortly-go/internal/repository"
	"shortly-go/internal/service"
	"shortly-go/pkg/logging"
)

func initConfig() {
	wd, _ := os.Getwd()
	log.Printf("Loading config from: %s/config.yaml", wd)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}
}

func startServer(r *gin.Engine) {
	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// 启动服务器
	go func() {
		logging.Logger.Info("Server is running on " + addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// 把缓冲中的点击事件全部落库后再退出
	service.Clicks.Close()

	if repository.CacheEnabled() {
		conn := repository.RedisPool.Get()
		defer func() {
			if err := conn.Close(); err != nil {
				logging.Logger.Warn("Redis connection close failed", zap.Error(err))
			}
		}()
	}

	logging.Logger.Info("Server exiting")
}

func main() {
	initConfig()

	// 初始化日志系统
	logging.InitLoggerFromConfig()
	logging.Logger.Info("Application started")

	repository.InitDB(logging.Logger, logging.AtomicLevel)
	repository.InitRedis()
	service.InitClickRecorder(repository.DB)

	// 初始化 i18n（加载 TOML 文件）
	bundle, err := i18n.InitI18n([]string{
		"./i18n/en.toml",
		"./i18n/zh.toml",
	}, "en")
	if err != nil {
		panic(err)
	}

	r := handler.NewRouter(bundle)

	c := cron.New()

	// 定时任务：每十分钟固化一次点击统计
	_, addErr := c.AddFunc("*/10 * * * *", func() {
		if err := service.StatisticalData(); err != nil {
			logging.Logger.Error("Failed to persist click statistics via cron job", zap.Error(err))
		}
	})
	if addErr != nil {
		logging.Logger.Fatal("Failed to schedule cron job", zap.Error(addErr))
	}
	c.Start()

	startServer(r)
}
