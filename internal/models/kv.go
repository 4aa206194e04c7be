package models

import "time"

// KVEntry is a single persisted key of a profile. Value holds JSON, or its
// AES-GCM ciphertext in base64 when an encryption key is configured.
type KVEntry struct {
	ID        uint   `gorm:"primaryKey"`
	ProfileID string `gorm:"size:64;not null;uniqueIndex:idx_kv_profile_key"`
	Key       string `gorm:"column:kv_key;size:128;not null;uniqueIndex:idx_kv_profile_key"`
	Value     string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Profile Profile `gorm:"constraint:OnDelete:CASCADE"`
}

func (KVEntry) TableName() string { return "kv_entries" }
