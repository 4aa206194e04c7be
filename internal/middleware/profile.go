package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/app"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/config"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/models"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	scopeKey = "scope"
	// ProfileHeader carries the profile token for clients that do not keep cookies.
	ProfileHeader = "X-Profile-Token"
)

// ProfileMiddleware resolves the browser profile of the request, minting a new
// one when the token is missing, invalid or points at an expired profile. The
// token is re-signed on every request so the expiry slides with use. Requests
// of the same profile run one at a time.
func ProfileMiddleware(svc *app.Services, cfg config.ProfileConfig) gin.HandlerFunc {
	ttl := time.Duration(cfg.TTLDays) * 24 * time.Hour
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}

	return func(c *gin.Context) {
		now := time.Now()
		profile, err := lookupProfile(svc.DB, cfg, tokenFrom(c, cfg.CookieName), now)
		if err != nil && !errors.Is(err, errNoProfile) {
			// the token stays untouched so the profile is found again later
			svc.Log.Error("profile lookup failed", "error", err)
			util.Abort(c, http.StatusServiceUnavailable, util.CodeServerErr, "profile storage unavailable")
			return
		}
		if err != nil {
			profile = models.Profile{ID: uuid.NewString(), ExpiresAt: now.Add(ttl), LastSeenAt: now}
			if err := svc.DB.Create(&profile).Error; err != nil {
				svc.Log.Error("create profile failed", "error", err)
				util.Abort(c, http.StatusInternalServerError, util.CodeServerErr, "profile unavailable")
				return
			}
		} else {
			profile.ExpiresAt = now.Add(ttl)
			profile.LastSeenAt = now
			if err := svc.DB.Model(&profile).Updates(map[string]interface{}{
				"expires_at":   profile.ExpiresAt,
				"last_seen_at": profile.LastSeenAt,
			}).Error; err != nil {
				svc.Log.Warn("profile touch failed", "profile", profile.ID, "error", err)
			}
		}

		token, err := util.GenerateProfileToken(cfg.Secret, cfg.Issuer, profile.ID, ttl)
		if err != nil {
			svc.Log.Error("sign profile token failed", "error", err)
			util.Abort(c, http.StatusInternalServerError, util.CodeServerErr, "profile unavailable")
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, token, int(ttl/time.Second), "/", "", cfg.CookieSecure, true)
		c.Header(ProfileHeader, token)

		unlock := svc.Lock(profile.ID)
		defer unlock()

		c.Set(scopeKey, svc.Open(profile.ID))
		c.Next()
	}
}

func tokenFrom(c *gin.Context, cookieName string) string {
	if t := c.GetHeader(ProfileHeader); t != "" {
		return t
	}
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil {
			return cookie
		}
	}
	return ""
}

// errNoProfile means the request carries no usable profile and a new one
// should be minted. Any other lookup error leaves the client's token alone.
var errNoProfile = errors.New("no usable profile")

func lookupProfile(db *gorm.DB, cfg config.ProfileConfig, token string, now time.Time) (models.Profile, error) {
	if token == "" {
		return models.Profile{}, errNoProfile
	}
	id, err := util.ParseProfileToken(cfg.Secret, cfg.Issuer, token)
	if err != nil {
		return models.Profile{}, fmt.Errorf("%w: %v", errNoProfile, err)
	}
	var p models.Profile
	err = db.Where("id = ?", id).Take(&p).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.Profile{}, errNoProfile
	case err != nil:
		return models.Profile{}, fmt.Errorf("load profile: %w", err)
	case !p.ExpiresAt.After(now):
		return models.Profile{}, errNoProfile
	}
	return p, nil
}

// Scope returns the profile scope set by ProfileMiddleware.
func Scope(c *gin.Context) (*app.Scope, bool) {
	v, ok := c.Get(scopeKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(*app.Scope)
	return s, ok && s != nil
}

// RequireSession rejects API calls from profiles without a logged-in user.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := Scope(c)
		if !ok || !s.Session.IsAuthenticated() {
			util.Abort(c, http.StatusUnauthorized, util.CodeAuth, "login required")
			return
		}
		c.Next()
	}
}
