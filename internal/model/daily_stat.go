package model

type DailyStat struct {
	BaseModel
	ShortLinkID uint   `gorm:"index"`
	Date        string `gorm:"type:date;index"` // yyyy-MM-dd
	Clicks      int64  `gorm:"default:0"`
}
