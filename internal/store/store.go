// Package store is the persistent key-value store every profile's state lives in.
//
// Values are JSON. Reads fail soft: absent keys, unreadable storage and malformed
// data all look the same to the caller, who then takes its default path.
package store

import "errors"

var (
	// ErrStorageUnavailable wraps every write that did not reach durable storage.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrMalformedData marks persisted bytes that could not be decoded.
	ErrMalformedData = errors.New("malformed persisted data")
)

// Well-known keys.
const (
	KeyUser            = "user"
	KeyCourseProgress  = "courseProgress"
	KeyMissionProgress = "missionProgress"
	KeyWallet          = "wallet"
	// LegacyCourseKeyPrefix is the old per-course progress key shape, read once for migration.
	LegacyCourseKeyPrefix = "courseProgress_"
)

// Store is a string-keyed JSON store.
type Store interface {
	// Get decodes the value under key into out and reports whether it did.
	Get(key string, out any) bool
	Set(key string, value any) error
	Remove(key string) error
}
