package model

type ShortLink struct {
	BaseModel
	ShortCode   string `gorm:"uniqueIndex;size:64;not null" json:"shortCode"`
	TargetURL   string `gorm:"size:2048;not null" json:"targetUrl"`
	CustomAlias bool   `gorm:"default:false" json:"customAlias"`
	TotalClicks int64  `gorm:"default:0" json:"totalClicks"`
}
