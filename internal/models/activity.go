package models

import "time"

// Activity records a learner action (course advanced, mission updated, ...).
type Activity struct {
	ID        uint   `gorm:"primaryKey"`
	ProfileID string `gorm:"size:64;index;not null"`
	UserID    string `gorm:"size:64;index"`
	Method    string `gorm:"size:16"`
	Kind      string `gorm:"size:32;index"` // lesson / game / account / wallet / backup
	PathEnc   string `gorm:"size:1024"`     // 加密后的路径
	ActionEnc string `gorm:"size:2048"`     // 加密后的动作描述
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}
