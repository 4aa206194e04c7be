package models

import "time"

// Profile is one browser profile: the namespace every persisted key lives in.
type Profile struct {
	ID         string    `gorm:"primaryKey;size:64"` // UUID
	ExpiresAt  time.Time `gorm:"index;not null"`
	LastSeenAt time.Time
	CreatedAt  time.Time
}
