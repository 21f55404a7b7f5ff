package service

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shortly-go/internal/model"
	"shortly-go/pkg/logging"
)

const (
	// 事件缓冲大小，写满后 Record 退化为同步插入
	recorderBufferSize = 1024
	// 单次批量插入上限
	recorderMaxBatch = 100
)

// ClickRecorder 点击事件记录器
// 事件经缓冲 channel 交给单个后台 goroutine 批量落库，
// 重定向响应不等待落库完成，但任何事件都不允许丢：
// channel 满时调用方直接同步插入
type ClickRecorder struct {
	db      *gorm.DB
	events  chan model.ClickEvent
	flushCh chan chan struct{}
	stopped chan struct{}
	wg      sync.WaitGroup
	closed  sync.Once
}

// 全局记录器，main 启动时初始化
var Clicks *ClickRecorder

// InitClickRecorder 初始化全局点击记录器
func InitClickRecorder(db *gorm.DB) {
	Clicks = NewClickRecorder(db, recorderBufferSize)
}

// NewClickRecorder 创建记录器并启动后台写入 goroutine
func NewClickRecorder(db *gorm.DB, bufferSize int) *ClickRecorder {
	r := &ClickRecorder{
		db:      db,
		events:  make(chan model.ClickEvent, bufferSize),
		flushCh: make(chan chan struct{}),
		stopped: make(chan struct{}),
	}
	r.wg.Add(1)
	go r.loop()
	return r
}

// Record 追加一条点击事件
// 缓冲未满时为非阻塞投递；满了就在调用方同步插入，保证不丢事件
func (r *ClickRecorder) Record(shortCode string, occurredAt time.Time) {
	ev := model.ClickEvent{
		ShortCode:  shortCode,
		OccurredAt: occurredAt,
	}

	select {
	case r.events <- ev:
	default:
		r.insert([]model.ClickEvent{ev})
	}
}

// Flush 等待缓冲中已投递的事件全部落库
// 分析读取之前调用（测试和优雅停机用）
// Close 之后再调用直接返回，Close 已经把剩余事件落库了
func (r *ClickRecorder) Flush() {
	done := make(chan struct{})
	select {
	case r.flushCh <- done:
		<-done
	case <-r.stopped:
	}
}

// Close 停止后台写入并落库剩余事件
func (r *ClickRecorder) Close() {
	r.closed.Do(func() {
		close(r.events)
		r.wg.Wait()
		close(r.stopped)
	})
}

func (r *ClickRecorder) loop() {
	defer r.wg.Done()

	for {
		select {
		case ev, ok := <-r.events:
			if !ok {
				return
			}
			r.insert(r.drain(ev))
		case done := <-r.flushCh:
			r.insert(r.drainPending())
			close(done)
		}
	}
}

// drain 以 first 为起点非阻塞收集一批事件
func (r *ClickRecorder) drain(first model.ClickEvent) []model.ClickEvent {
	batch := make([]model.ClickEvent, 0, recorderMaxBatch)
	batch = append(batch, first)
	for len(batch) < recorderMaxBatch {
		select {
		case ev, ok := <-r.events:
			if !ok {
				return batch
			}
			batch = append(batch, ev)
		default:
			return batch
		}
	}
	return batch
}

func (r *ClickRecorder) drainPending() []model.ClickEvent {
	var batch []model.ClickEvent
	for {
		select {
		case ev, ok := <-r.events:
			if !ok {
				return batch
			}
			batch = append(batch, ev)
		default:
			return batch
		}
	}
}

func (r *ClickRecorder) insert(batch []model.ClickEvent) {
	if len(batch) == 0 {
		return
	}

	if err := r.db.CreateInBatches(batch, recorderMaxBatch).Error; err != nil {
		// 基础设施级写失败，必须暴露出来，不能静默丢事件
		logging.Logger.Error("Failed to persist click events",
			zap.Int("count", len(batch)),
			zap.Error(err))
	}
}
