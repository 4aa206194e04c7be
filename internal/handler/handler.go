package handler

import (
	"net/http"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/app"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/middleware"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
)

// scopeOf fetches the profile scope or writes a 401 envelope.
func scopeOf(c *gin.Context) (*app.Scope, bool) {
	s, ok := middleware.Scope(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "profile missing")
		return nil, false
	}
	return s, true
}

// userOf is scopeOf plus a logged-in session.
func userOf(c *gin.Context) (*app.Scope, string, bool) {
	s, ok := scopeOf(c)
	if !ok {
		return nil, "", false
	}
	sess, ok := s.Session.Session()
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "login required")
		return nil, "", false
	}
	return s, sess.UserID, true
}
