package middleware

import (
	"net/http"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/app"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	activityKindKey   = "activity.kind"
	activityActionKey = "activity.action"
)

// Activity kinds shown on the profile page.
const (
	KindLesson  = "lesson"
	KindGame    = "game"
	KindAccount = "account"
	KindWallet  = "wallet"
	KindBackup  = "backup"
)

// Describe labels the current request for the activity log.
func Describe(c *gin.Context, kind, action string) {
	c.Set(activityKindKey, kind)
	c.Set(activityActionKey, action)
}

// ActivityMiddleware stores successful, described, mutating requests.
// Path and action are encrypted when the services carry a cipher.
func ActivityMiddleware(svc *app.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userBefore string
		if s, ok := Scope(c); ok {
			if sess, ok := s.Session.Session(); ok {
				userBefore = sess.UserID
			}
		}

		c.Next()

		if c.Request.Method == http.MethodGet || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		kind := c.GetString(activityKindKey)
		if kind == "" {
			return
		}
		s, ok := Scope(c)
		if !ok {
			return
		}
		userID := userBefore
		if sess, ok := s.Session.Session(); ok {
			userID = sess.UserID
		}

		path := c.Request.URL.Path
		encPath, err := svc.Cipher.SealString(path)
		if err != nil {
			svc.Log.Warn("activity not recorded", "error", err)
			return
		}
		encAction, err := svc.Cipher.SealString(c.GetString(activityActionKey))
		if err != nil {
			svc.Log.Warn("activity not recorded", "error", err)
			return
		}

		rec := models.Activity{
			ProfileID: s.ProfileID,
			UserID:    userID,
			Method:    c.Request.Method,
			Kind:      kind,
			PathEnc:   encPath,
			ActionEnc: encAction,
			IP:        c.ClientIP(),
			UserAgent: truncate(c.Request.UserAgent(), 255),
		}
		if err := svc.DB.Create(&rec).Error; err != nil {
			svc.Log.Warn("activity not recorded", "profile", s.ProfileID, "error", err)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
