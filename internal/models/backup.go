package models

import "time"

// Backup is the metadata row of an encrypted profile snapshot on disk.
type Backup struct {
	ID        string `gorm:"primaryKey;size:64"`
	ProfileID string `gorm:"size:64;index;not null"`
	FileName  string `gorm:"size:255;not null"`
	Size      int64
	KeyCount  int
	CreatedAt time.Time
}
