// Package ledger tracks course completion and the token earnings derived from it.
package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/store"

	"github.com/hashicorp/go-hclog"
)

var (
	ErrInvalidModuleCount = errors.New("module count must be positive")
	ErrInvalidPercent     = errors.New("percent must be within 0-100")
	ErrMissionNotSettable = errors.New("mission progress follows its course")
)

// Ledger owns the courseProgress key: a map of course id to percent complete.
// The in-memory map is authoritative for the lifetime of the Ledger even when
// a write to the store fails.
type Ledger struct {
	catalog  *catalog.Catalog
	store    store.Store
	log      hclog.Logger
	progress map[string]int
}

// New loads progress from st. Per-course keys written by older clients are
// folded into the aggregate map and removed.
func New(cat *catalog.Catalog, st store.Store, log hclog.Logger) *Ledger {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	l := &Ledger{catalog: cat, store: st, log: log, progress: make(map[string]int)}

	var saved map[string]int
	if st.Get(store.KeyCourseProgress, &saved) {
		for id, p := range saved {
			l.progress[id] = clampPercent(p)
		}
	}
	l.migrateLegacy()
	return l
}

type keyLister interface {
	Keys(prefix string) []string
}

func (l *Ledger) migrateLegacy() {
	lister, ok := l.store.(keyLister)
	if !ok {
		return
	}
	keys := lister.Keys(store.LegacyCourseKeyPrefix)
	if len(keys) == 0 {
		return
	}
	for _, key := range keys {
		id := strings.TrimPrefix(key, store.LegacyCourseKeyPrefix)
		var p int
		if l.store.Get(key, &p) && clampPercent(p) > l.progress[id] {
			l.progress[id] = clampPercent(p)
		}
	}
	if err := l.persist(); err != nil {
		return
	}
	for _, key := range keys {
		if err := l.store.Remove(key); err != nil {
			l.log.Warn("legacy progress key not removed", "key", key, "error", err)
		}
	}
	l.log.Debug("folded legacy progress keys", "count", len(keys))
}

// Init records 0 for every catalog course that has no progress yet.
func (l *Ledger) Init() {
	changed := false
	for _, c := range l.catalog.Courses() {
		if _, ok := l.progress[c.ID]; !ok {
			l.progress[c.ID] = 0
			changed = true
		}
	}
	if changed {
		_ = l.persist()
	}
}

// GetProgress returns the percent complete of a course, 0 if nothing is recorded.
func (l *Ledger) GetProgress(courseID string) int {
	return l.progress[courseID]
}

// Advance completes one module: percent grows by floor(100/moduleCount), capped at 100.
func (l *Ledger) Advance(courseID string, moduleCount int) (int, error) {
	if moduleCount < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidModuleCount, moduleCount)
	}
	cur := l.progress[courseID]
	if cur >= 100 {
		return 100, nil
	}
	next := cur + step(moduleCount)
	if next > 100 {
		next = 100
	}
	l.progress[courseID] = next
	_ = l.persist()
	return next, nil
}

// Complete marks a course as fully done.
func (l *Ledger) Complete(courseID string) int {
	if l.progress[courseID] != 100 {
		l.progress[courseID] = 100
		_ = l.persist()
	}
	return 100
}

func (l *Ledger) Reset(courseID string) {
	l.progress[courseID] = 0
	_ = l.persist()
}

// ResetAll writes 0 for every catalog course and drops anything else.
func (l *Ledger) ResetAll() {
	l.progress = make(map[string]int)
	for _, c := range l.catalog.Courses() {
		l.progress[c.ID] = 0
	}
	_ = l.persist()
}

// Snapshot returns a copy of all recorded progress.
func (l *Ledger) Snapshot() map[string]int {
	out := make(map[string]int, len(l.progress))
	for id, p := range l.progress {
		out[id] = p
	}
	return out
}

// ModulesCompleted is how many of the course's modules the current percent covers.
func ModulesCompleted(course catalog.Course, percent int) int {
	if course.ModuleCount < 1 {
		return 0
	}
	if clampPercent(percent) >= 100 {
		return course.ModuleCount
	}
	n := clampPercent(percent) / step(course.ModuleCount)
	if n > course.ModuleCount {
		n = course.ModuleCount
	}
	return n
}

func (l *Ledger) persist() error {
	if err := l.store.Set(store.KeyCourseProgress, l.progress); err != nil {
		l.log.Warn("progress not persisted", "error", err)
		return err
	}
	return nil
}

// step is the percent one module is worth. Catalogs with more than 100
// modules would otherwise never move.
func step(moduleCount int) int {
	s := 100 / moduleCount
	if s < 1 {
		s = 1
	}
	return s
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
