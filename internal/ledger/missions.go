package ledger

import (
	"fmt"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/store"

	"github.com/hashicorp/go-hclog"
)

type MissionStatus string

const (
	StatusNotStarted MissionStatus = "not-started"
	StatusInProgress MissionStatus = "in-progress"
	StatusCompleted  MissionStatus = "completed"
)

// ParseStatus accepts the filter values used by the missions page. "" and "all" match everything.
func ParseStatus(s string) (MissionStatus, bool, error) {
	switch s {
	case "", "all":
		return "", false, nil
	case string(StatusNotStarted), string(StatusInProgress), string(StatusCompleted):
		return MissionStatus(s), true, nil
	}
	return "", false, fmt.Errorf("unknown mission status %q", s)
}

func statusOf(percent int) MissionStatus {
	switch {
	case percent >= 100:
		return StatusCompleted
	case percent <= 0:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}

type MissionView struct {
	catalog.Mission
	Progress int           `json:"progress"`
	Status   MissionStatus `json:"status"`
}

type MissionSummary struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"in_progress"`
	NotStarted int `json:"not_started"`
	XPEarned   int `json:"xp_earned"`
}

// Missions is the mission-completion view. Learning missions mirror the
// progress of their course; game missions are reported by the games and kept
// under the missionProgress key.
type Missions struct {
	catalog *catalog.Catalog
	ledger  *Ledger
	store   store.Store
	log     hclog.Logger
	game    map[string]int
}

func NewMissions(cat *catalog.Catalog, l *Ledger, st store.Store, log hclog.Logger) *Missions {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	m := &Missions{catalog: cat, ledger: l, store: st, log: log, game: make(map[string]int)}
	var saved map[string]int
	if st.Get(store.KeyMissionProgress, &saved) {
		for id, p := range saved {
			m.game[id] = clampPercent(p)
		}
	}
	return m
}

func (m *Missions) view(ms catalog.Mission) MissionView {
	var p int
	if ms.Type == catalog.MissionLearning {
		p = m.ledger.GetProgress(ms.CourseID)
	} else {
		p = m.game[ms.ID]
	}
	return MissionView{Mission: ms, Progress: p, Status: statusOf(p)}
}

// List returns missions in catalog order. Empty status or type means no filter.
func (m *Missions) List(status MissionStatus, typ catalog.MissionType) []MissionView {
	out := make([]MissionView, 0)
	for _, ms := range m.catalog.Missions() {
		v := m.view(ms)
		if status != "" && v.Status != status {
			continue
		}
		if typ != "" && v.Type != typ {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (m *Missions) Get(id string) (MissionView, error) {
	ms, err := m.catalog.Mission(id)
	if err != nil {
		return MissionView{}, err
	}
	return m.view(ms), nil
}

// SetProgress records progress of a game mission. Learning missions follow
// their course and cannot be set directly.
func (m *Missions) SetProgress(id string, percent int) (MissionView, error) {
	ms, err := m.catalog.Mission(id)
	if err != nil {
		return MissionView{}, err
	}
	if percent < 0 || percent > 100 {
		return MissionView{}, fmt.Errorf("%w: %d", ErrInvalidPercent, percent)
	}
	if ms.Type != catalog.MissionGame {
		return MissionView{}, fmt.Errorf("%w: %q tracks %q", ErrMissionNotSettable, id, ms.CourseID)
	}
	m.game[id] = percent
	if err := m.store.Set(store.KeyMissionProgress, m.game); err != nil {
		m.log.Warn("mission progress not persisted", "mission", id, "error", err)
	}
	return m.view(ms), nil
}

func (m *Missions) Summary() MissionSummary {
	var s MissionSummary
	for _, v := range m.List("", "") {
		s.Total++
		switch v.Status {
		case StatusCompleted:
			s.Completed++
			s.XPEarned += v.XP
		case StatusInProgress:
			s.InProgress++
		default:
			s.NotStarted++
		}
	}
	return s
}
