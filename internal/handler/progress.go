package handler

import (
	"fmt"
	"net/http"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/ledger"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/middleware"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
)

// ProgressHandler exposes the per-profile course progress ledger.
type ProgressHandler struct {
	Catalog *catalog.Catalog
}

func NewProgressHandler(cat *catalog.Catalog) *ProgressHandler {
	return &ProgressHandler{Catalog: cat}
}

type courseProgressResp struct {
	CourseID         string `json:"course_id"`
	Title            string `json:"title"`
	Percent          int    `json:"percent"`
	ModulesCompleted int    `json:"modules_completed"`
	ModuleCount      int    `json:"module_count"`
	Earned           int    `json:"earned"`
}

func progressItem(course catalog.Course, percent int) courseProgressResp {
	return courseProgressResp{
		CourseID:         course.ID,
		Title:            course.Title,
		Percent:          percent,
		ModulesCompleted: ledger.ModulesCompleted(course, percent),
		ModuleCount:      course.ModuleCount,
		Earned:           ledger.ComputeEarnings(course, percent),
	}
}

// ListProgress seeds missing courses with 0 and returns every course.
func (h *ProgressHandler) ListProgress(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	s.Ledger.Init()

	courses := h.Catalog.Courses()
	items := make([]courseProgressResp, 0, len(courses))
	completed := 0
	for _, course := range courses {
		p := s.Ledger.GetProgress(course.ID)
		if p >= 100 {
			completed++
		}
		items = append(items, progressItem(course, p))
	}
	util.Success(c, util.Response{
		"items":     items,
		"progress":  s.Ledger.Snapshot(),
		"completed": completed,
	})
}

func (h *ProgressHandler) GetProgress(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	course, ok := lookupCourse(c, h.Catalog)
	if !ok {
		return
	}
	util.Success(c, util.Response{"progress": progressItem(course, s.Ledger.GetProgress(course.ID))})
}

// Advance completes the next module of the course.
func (h *ProgressHandler) Advance(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	course, ok := lookupCourse(c, h.Catalog)
	if !ok {
		return
	}
	p, err := s.Ledger.Advance(course.ID, course.ModuleCount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	middleware.Describe(c, middleware.KindLesson, fmt.Sprintf("%s: %d%%", course.Title, p))
	util.Success(c, util.Response{"progress": progressItem(course, p)})
}

func (h *ProgressHandler) Complete(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	course, ok := lookupCourse(c, h.Catalog)
	if !ok {
		return
	}
	p := s.Ledger.Complete(course.ID)
	middleware.Describe(c, middleware.KindLesson, "completed "+course.Title)
	util.Success(c, util.Response{"progress": progressItem(course, p)})
}

func (h *ProgressHandler) Reset(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	course, ok := lookupCourse(c, h.Catalog)
	if !ok {
		return
	}
	s.Ledger.Reset(course.ID)
	middleware.Describe(c, middleware.KindLesson, "reset "+course.Title)
	util.Success(c, util.Response{"progress": progressItem(course, 0)})
}

func (h *ProgressHandler) ResetAll(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	s.Ledger.ResetAll()
	middleware.Describe(c, middleware.KindLesson, "reset all courses")
	util.Success(c, util.Response{"progress": s.Ledger.Snapshot()})
}
