package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/catalog"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/ledger"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/middleware"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
)

// ListMissions filters by ?status= and ?type=; both accept "all".
func ListMissions(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	status, _, err := ledger.ParseStatus(c.Query("status"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	var typ catalog.MissionType
	switch t := c.Query("type"); t {
	case "", "all":
	case string(catalog.MissionLearning), string(catalog.MissionGame):
		typ = catalog.MissionType(t)
	default:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, fmt.Sprintf("unknown mission type %q", t))
		return
	}

	util.Success(c, util.Response{
		"items":   s.Missions.List(status, typ),
		"summary": s.Missions.Summary(),
	})
}

func GetMission(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	v, err := s.Missions.Get(c.Param("id"))
	if err != nil {
		missionError(c, err)
		return
	}
	util.Success(c, util.Response{"mission": v})
}

type missionProgressReq struct {
	Progress *int `json:"progress" binding:"required"`
}

// SetMissionProgress records progress reported by a game.
func SetMissionProgress(c *gin.Context) {
	s, _, ok := userOf(c)
	if !ok {
		return
	}
	var req missionProgressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "progress is required")
		return
	}
	v, err := s.Missions.SetProgress(c.Param("id"), *req.Progress)
	if err != nil {
		missionError(c, err)
		return
	}
	middleware.Describe(c, middleware.KindGame, fmt.Sprintf("%s: %d%%", v.Title, v.Progress))
	util.Success(c, util.Response{"mission": v})
}

func missionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrMissionNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "mission not found")
	case errors.Is(err, ledger.ErrInvalidPercent), errors.Is(err, ledger.ErrMissionNotSettable):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "mission update failed")
	}
}
