package handler

import (
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/ledger"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

// ProfileHandler builds the learner profile page.
type ProfileHandler struct {
	Catalog  *catalog.Catalog
	Activity *ActivityHandler
	Goal     int
	Log      hclog.Logger
}

func NewProfileHandler(cat *catalog.Catalog, activity *ActivityHandler, goal int, log hclog.Logger) *ProfileHandler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &ProfileHandler{Catalog: cat, Activity: activity, Goal: goal, Log: log}
}

const recentActivityLimit = 5

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	s, userID, ok := userOf(c)
	if !ok {
		return
	}
	sess, _ := s.Session.Session()

	var completed, lessons int
	for _, course := range h.Catalog.Courses() {
		p := s.Ledger.GetProgress(course.ID)
		if p >= 100 {
			completed++
		}
		lessons += ledger.ModulesCompleted(course, p)
	}

	recent, err := h.Activity.Recent(s.ProfileID, userID, recentActivityLimit)
	if err != nil {
		// the page still renders without its activity feed
		h.Log.Warn("recent activity unavailable", "profile", s.ProfileID, "error", err)
		recent = []activityResp{}
	}

	report := s.Ledger.Earnings(h.Goal)
	util.Success(c, util.Response{
		"user":              sess,
		"courses_completed": completed,
		"courses_total":     len(h.Catalog.Courses()),
		"lessons_completed": lessons,
		"earnings":          report.Total,
		"earnings_goal":     report.Goal,
		"goal_percent":      report.GoalPercent,
		"wallet":            walletBody(s.Wallet),
		"missions":          s.Missions.Summary(),
		"recent_activity":   recent,
	})
}
