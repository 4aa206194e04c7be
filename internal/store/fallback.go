package store

import (
	"errors"

	"github.com/hashicorp/go-hclog"
)

// Fallback reads and writes through primary. When a write fails with
// ErrStorageUnavailable the value is kept in an in-memory overlay instead, so
// the rest of the request still sees it; it will not survive the request.
type Fallback struct {
	primary Store
	overlay *MemoryStore
	removed map[string]bool
	log     hclog.Logger
}

func NewFallback(primary Store, log hclog.Logger) *Fallback {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Fallback{
		primary: primary,
		overlay: NewMemoryStore(),
		removed: make(map[string]bool),
		log:     log,
	}
}

func (f *Fallback) Get(key string, out any) bool {
	if f.removed[key] {
		return false
	}
	if f.overlay.Get(key, out) {
		return true
	}
	return f.primary.Get(key, out)
}

func (f *Fallback) Set(key string, value any) error {
	err := f.primary.Set(key, value)
	if err == nil {
		_ = f.overlay.Remove(key)
		delete(f.removed, key)
		return nil
	}
	if !errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	f.log.Warn("write kept in memory only", "key", key, "error", err)
	delete(f.removed, key)
	if oerr := f.overlay.Set(key, value); oerr != nil {
		return oerr
	}
	return err
}

func (f *Fallback) Remove(key string) error {
	_ = f.overlay.Remove(key)
	err := f.primary.Remove(key)
	if err != nil {
		f.log.Warn("remove kept in memory only", "key", key, "error", err)
		f.removed[key] = true
	}
	return err
}

// Degraded reports whether any write of this fallback missed durable storage.
func (f *Fallback) Degraded() bool {
	return len(f.overlay.Keys("")) > 0 || len(f.removed) > 0
}

// Keys lists the primary's keys when the primary can enumerate them.
func (f *Fallback) Keys(prefix string) []string {
	lister, ok := f.primary.(interface{ Keys(string) []string })
	if !ok {
		return nil
	}
	var keys []string
	for _, k := range lister.Keys(prefix) {
		if !f.removed[k] {
			keys = append(keys, k)
		}
	}
	return keys
}
