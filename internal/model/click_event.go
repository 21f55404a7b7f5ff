package model

import "time"

// ClickEvent 点击事件，追加写入，永不修改
type ClickEvent struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ShortCode  string    `gorm:"size:64;not null;index:idx_code_occurred" json:"shortCode"`
	OccurredAt time.Time `gorm:"not null;index:idx_code_occurred" json:"occurredAt"`
}
