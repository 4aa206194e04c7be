package middleware

import (
	"net/http"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/guard"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/session"

	"github.com/gin-gonic/gin"
)

// PageGuard runs the access guard before a page is served.
func PageGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		state := session.Unknown
		if s, ok := Scope(c); ok {
			state = s.Session.State()
		}

		d := guard.CanRender(c.Request.URL.Path, state)
		switch d.Verdict {
		case guard.Allow:
			c.Next()
		case guard.Redirect:
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
		default:
			// nothing may paint before the session is known
			c.AbortWithStatus(http.StatusNoContent)
		}
	}
}
