package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	Catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{Catalog: cat}
}

func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses := h.Catalog.Courses()
	util.Success(c, util.Response{
		"items":        courses,
		"total":        len(courses),
		"total_reward": h.Catalog.TotalTokenReward(),
	})
}

func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, ok := lookupCourse(c, h.Catalog)
	if !ok {
		return
	}
	util.Success(c, util.Response{"course": course})
}

func (h *CatalogHandler) ListGames(c *gin.Context) {
	util.Success(c, util.Response{"items": h.Catalog.Games()})
}

// Search looks ?q= up in pages and catalog entries.
func (h *CatalogHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "q is required")
		return
	}
	hits := h.Catalog.Search(q)
	util.Success(c, util.Response{"query": q, "items": hits, "total": len(hits)})
}

// lookupCourse validates :courseId (or :id) and writes 400/404 when it is unusable.
func lookupCourse(c *gin.Context, cat *catalog.Catalog) (catalog.Course, bool) {
	id := c.Param("courseId")
	if id == "" {
		id = c.Param("id")
	}
	if err := util.ValidateSlug(id); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return catalog.Course{}, false
	}
	course, err := cat.Course(id)
	if err != nil {
		if errors.Is(err, catalog.ErrCourseNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "course lookup failed")
		}
		return catalog.Course{}, false
	}
	return course, true
}
