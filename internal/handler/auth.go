package handler

import (
	"errors"
	"net/http"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/guard"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/middleware"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/session"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

// AuthHandler 负责登录/注册相关接口
type AuthHandler struct {
	Log hclog.Logger
}

func NewAuthHandler(log hclog.Logger) *AuthHandler {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &AuthHandler{Log: log}
}

func sessionBody(m *session.Manager) util.Response {
	body := util.Response{"state": m.State().String(), "authenticated": m.IsAuthenticated()}
	if s, ok := m.Session(); ok {
		body["user"] = s
	}
	return body
}

// Session reports the restored session of the profile.
func (h *AuthHandler) Session(c *gin.Context) {
	s, ok := scopeOf(c)
	if !ok {
		return
	}
	util.Success(c, sessionBody(s.Session))
}

// ---------- 登录 ----------

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	s, ok := scopeOf(c)
	if !ok {
		return
	}
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	sess, err := s.Session.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.authError(c, err)
		return
	}
	middleware.Describe(c, middleware.KindAccount, "logged in as "+sess.Email)
	util.Success(c, sessionBody(s.Session))
}

// ---------- 注册 ----------

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	s, ok := scopeOf(c)
	if !ok {
		return
	}
	var req signupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	sess, err := s.Session.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.authError(c, err)
		return
	}
	middleware.Describe(c, middleware.KindAccount, "signed up as "+sess.DisplayName)
	util.Success(c, sessionBody(s.Session))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	s, ok := scopeOf(c)
	if !ok {
		return
	}
	if s.Session.IsAuthenticated() {
		middleware.Describe(c, middleware.KindAccount, "logged out")
	}
	s.Session.Logout()
	util.Success(c, sessionBody(s.Session))
}

func (h *AuthHandler) authError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrInvalidCredentials) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidCredentials, "email and password are required")
		return
	}
	h.Log.Error("authentication failed", "error", err)
	util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "authentication failed")
}

// Navigate answers whether the page at ?path= may render for this profile.
func Navigate(c *gin.Context) {
	s, ok := scopeOf(c)
	if !ok {
		return
	}
	path := c.Query("path")
	if path == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "path is required")
		return
	}
	d := guard.CanRender(path, s.Session.State())
	body := util.Response{"path": path, "verdict": d.Verdict.String()}
	if d.Location != "" {
		body["location"] = d.Location
	}
	util.Success(c, body)
}
