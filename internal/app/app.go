// Package app wires the per-profile components together.
//
// Services is built once at startup. Each request opens a Scope for the
// profile it belongs to: a store view, a restored session manager, the
// progress ledger, the mission view and the wallet connector.
package app

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/ledger"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/models"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/session"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/store"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/wallet"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"
)

type Services struct {
	DB      *gorm.DB
	Catalog *catalog.Catalog
	Auth    session.Authenticator
	Cipher  *util.Cipher
	Log     hclog.Logger

	locks sync.Map // profile id -> *sync.Mutex
}

func NewServices(db *gorm.DB, cat *catalog.Catalog, auth session.Authenticator, cipher *util.Cipher, log hclog.Logger) *Services {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	if auth == nil {
		auth = session.LocalAuthenticator{}
	}
	return &Services{DB: db, Catalog: cat, Auth: auth, Cipher: cipher, Log: log}
}

// Lock serializes work on one profile. The returned func releases it.
func (s *Services) Lock(profileID string) func() {
	v, _ := s.locks.LoadOrStore(profileID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Scope is everything one profile's request touches.
type Scope struct {
	ProfileID string
	Profile   *store.ProfileStore
	Store     *store.Fallback
	Session   *session.Manager
	Ledger    *ledger.Ledger
	Missions  *ledger.Missions
	Wallet    *wallet.Connector
}

// Open builds the scope for profileID and restores its session.
func (s *Services) Open(profileID string) *Scope {
	log := s.Log.With("profile", profileID)
	ps := store.NewProfileStore(s.DB, profileID, s.Cipher, log.Named("store"))
	st := store.NewFallback(ps, log.Named("store"))

	sess := session.NewManager(st, s.Auth, log.Named("session"))
	sess.Restore()

	l := ledger.New(s.Catalog, st, log.Named("ledger"))
	return &Scope{
		ProfileID: profileID,
		Profile:   ps,
		Store:     st,
		Session:   sess,
		Ledger:    l,
		Missions:  ledger.NewMissions(s.Catalog, l, st, log.Named("missions")),
		Wallet:    wallet.NewConnector(st, log.Named("wallet")),
	}
}

// PurgeExpired drops profiles whose token lifetime ran out, together with
// their entries, activity and backup files. It returns how many profiles went.
func (s *Services) PurgeExpired(now time.Time, backupDir string) (int, error) {
	var ids []string
	if err := s.DB.Model(&models.Profile{}).Where("expires_at <= ?", now).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var backups []models.Backup
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("profile_id IN ?", ids).Find(&backups).Error; err != nil {
			return err
		}
		for _, m := range []interface{}{&models.KVEntry{}, &models.Activity{}, &models.Backup{}} {
			if err := tx.Where("profile_id IN ?", ids).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Where("id IN ?", ids).Delete(&models.Profile{}).Error
	})
	if err != nil {
		return 0, err
	}

	for _, b := range backups {
		if err := os.Remove(filepath.Join(backupDir, b.FileName)); err != nil && !os.IsNotExist(err) {
			s.Log.Warn("backup file not removed", "file", b.FileName, "error", err)
		}
	}
	for _, id := range ids {
		s.locks.Delete(id)
	}
	s.Log.Info("expired profiles purged", "count", len(ids))
	return len(ids), nil
}
