package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/models"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileStore persists the keys of one profile in the kv_entries table.
type ProfileStore struct {
	db        *gorm.DB
	profileID string
	cipher    *util.Cipher
	log       hclog.Logger
}

// NewProfileStore scopes db to profileID. cipher may be nil.
func NewProfileStore(db *gorm.DB, profileID string, cipher *util.Cipher, log hclog.Logger) *ProfileStore {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &ProfileStore{
		db:        db,
		profileID: profileID,
		cipher:    cipher,
		log:       log.With("profile", profileID),
	}
}

func (s *ProfileStore) ProfileID() string { return s.profileID }

func (s *ProfileStore) Get(key string, out any) bool {
	var entry models.KVEntry
	err := s.db.Where("profile_id = ? AND kv_key = ?", s.profileID, key).
		Take(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("read failed, treating as absent", "key", key, "error", err)
		}
		return false
	}

	raw, err := s.decode(entry.Value)
	if err == nil {
		err = json.Unmarshal(raw, out)
	}
	if err != nil {
		s.log.Debug("ignoring unreadable value", "key", key, "error", fmt.Errorf("%w: %v", ErrMalformedData, err))
		return false
	}
	return true
}

func (s *ProfileStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.setRaw(s.db, key, raw)
}

func (s *ProfileStore) setRaw(tx *gorm.DB, key string, raw []byte) error {
	enc, err := s.encode(raw)
	if err != nil {
		return fmt.Errorf("%w: seal %q: %v", ErrStorageUnavailable, key, err)
	}

	entry := models.KVEntry{ProfileID: s.profileID, Key: key, Value: enc}
	err = tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}, {Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("%w: write %q: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *ProfileStore) Remove(key string) error {
	err := s.db.Where("profile_id = ? AND kv_key = ?", s.profileID, key).
		Delete(&models.KVEntry{}).Error
	if err != nil {
		return fmt.Errorf("%w: remove %q: %v", ErrStorageUnavailable, key, err)
	}
	return nil
}

// Keys lists the profile's keys that start with prefix.
func (s *ProfileStore) Keys(prefix string) []string {
	var keys []string
	q := s.db.Model(&models.KVEntry{}).Where("profile_id = ?", s.profileID)
	if prefix != "" {
		q = q.Where("kv_key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}
	if err := q.Order("kv_key").Pluck("kv_key", &keys).Error; err != nil {
		s.log.Warn("list keys failed", "prefix", prefix, "error", err)
		return nil
	}
	return keys
}

// Snapshot returns every readable key of the profile as plain JSON.
func (s *ProfileStore) Snapshot() (map[string]json.RawMessage, error) {
	var entries []models.KVEntry
	if err := s.db.Where("profile_id = ?", s.profileID).Order("kv_key").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("%w: snapshot: %v", ErrStorageUnavailable, err)
	}

	out := make(map[string]json.RawMessage, len(entries))
	for _, e := range entries {
		raw, err := s.decode(e.Value)
		if err != nil || !json.Valid(raw) {
			s.log.Debug("skipping unreadable value in snapshot", "key", e.Key)
			continue
		}
		out[e.Key] = json.RawMessage(raw)
	}
	return out, nil
}

// Restore replaces all keys of the profile with data in one transaction.
func (s *ProfileStore) Restore(data map[string]json.RawMessage) error {
	for key, raw := range data {
		if !json.Valid(raw) {
			return fmt.Errorf("%w: key %q", ErrMalformedData, key)
		}
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", s.profileID).Delete(&models.KVEntry{}).Error; err != nil {
			return fmt.Errorf("%w: clear: %v", ErrStorageUnavailable, err)
		}
		for key, raw := range data {
			if err := s.setRaw(tx, key, raw); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *ProfileStore) encode(raw []byte) (string, error) {
	if s.cipher == nil {
		return string(raw), nil
	}
	sealed, err := s.cipher.Seal(raw)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *ProfileStore) decode(value string) ([]byte, error) {
	if s.cipher == nil {
		return []byte(value), nil
	}
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}
	return s.cipher.Open(b)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
