package router

import (
	"net/http"
	"path/filepath"

	"github.com/NexsisNelson/Polygon-For-Dummies/internal/app"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/config"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/handler"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/middleware"
	"github.com/NexsisNelson/Polygon-For-Dummies/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
)

// Pages served by the single-page app shell. Everything except "/", "/login"
// and "/signup" needs a session; PageGuard decides.
var pages = []string{
	"/", "/login", "/signup",
	"/learn", "/learn/:courseId",
	"/games", "/games/:id",
	"/missions", "/resources", "/token-earnings", "/profile",
	"/settings", "/search", "/about", "/faq", "/contact",
}

// SetupRouter configures the Gin engine with the API and the page routes.
func SetupRouter(cfg *config.Config, svc *app.Services) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(
		gin.LoggerWithWriter(svc.Log.Named("http").StandardWriter(&hclog.StandardLoggerOptions{ForceLevel: hclog.Info})),
		gin.Recovery(),
	)

	r.Static("/static", filepath.Join(filepath.Dir(cfg.Web.IndexFile), "static"))

	// ====== Pages ======
	shell := func(c *gin.Context) { c.File(cfg.Web.IndexFile) }
	pageGroup := r.Group("")
	pageGroup.Use(middleware.ProfileMiddleware(svc, cfg.Profile), middleware.PageGuard())
	for _, p := range pages {
		pageGroup.GET(p, shell)
	}

	// ====== API ======
	api := r.Group("/api")

	api.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := svc.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			util.Error(c, http.StatusServiceUnavailable, util.CodeServerErr, "database unavailable")
			return
		}
		util.Success(c, util.Response{"status": "ok"})
	})

	scoped := api.Group("")
	scoped.Use(
		middleware.ProfileMiddleware(svc, cfg.Profile),
		middleware.ActivityMiddleware(svc),
	)

	authHandler := handler.NewAuthHandler(svc.Log.Named("auth"))
	scoped.GET("/auth/session", authHandler.Session)
	scoped.POST("/auth/login", authHandler.Login)
	scoped.POST("/auth/signup", authHandler.Signup)
	scoped.POST("/auth/logout", authHandler.Logout)
	scoped.GET("/navigate", handler.Navigate)

	catalogHandler := handler.NewCatalogHandler(svc.Catalog)
	scoped.GET("/catalog/courses", catalogHandler.ListCourses)
	scoped.GET("/catalog/courses/:id", catalogHandler.GetCourse)
	scoped.GET("/catalog/games", catalogHandler.ListGames)
	scoped.GET("/search", catalogHandler.Search)

	scoped.GET("/wallet", handler.GetWallet)
	scoped.POST("/wallet/connect", handler.ConnectWallet)
	scoped.POST("/wallet/disconnect", handler.DisconnectWallet)

	// 需要登录才能访问的接口
	protected := scoped.Group("")
	protected.Use(middleware.RequireSession())

	progressHandler := handler.NewProgressHandler(svc.Catalog)
	protected.GET("/progress", progressHandler.ListProgress)
	protected.POST("/progress/reset", progressHandler.ResetAll)
	protected.GET("/progress/:courseId", progressHandler.GetProgress)
	protected.POST("/progress/:courseId/advance", progressHandler.Advance)
	protected.POST("/progress/:courseId/complete", progressHandler.Complete)
	protected.POST("/progress/:courseId/reset", progressHandler.Reset)

	earningsHandler := handler.NewEarningsHandler(cfg.App.EarningsGoal)
	protected.GET("/earnings", earningsHandler.Report)
	protected.GET("/earnings/export/csv", earningsHandler.ExportCSV)
	protected.GET("/earnings/export/xlsx", earningsHandler.ExportXLSX)

	protected.GET("/missions", handler.ListMissions)
	protected.GET("/missions/:id", handler.GetMission)
	protected.POST("/missions/:id/progress", handler.SetMissionProgress)

	activityHandler := handler.NewActivityHandler(svc.DB, svc.Cipher, cfg.App.PageSize)
	protected.GET("/activity", activityHandler.ListActivity)

	profileHandler := handler.NewProfileHandler(svc.Catalog, activityHandler, cfg.App.EarningsGoal, svc.Log.Named("profile"))
	protected.GET("/profile", profileHandler.GetProfile)

	backupHandler := handler.NewBackupHandler(svc.DB, svc.Cipher, cfg.Backup.Dir, svc.Log.Named("backup"))
	protected.POST("/backups", backupHandler.CreateBackup)
	protected.GET("/backups", backupHandler.ListBackups)
	protected.POST("/backups/:id/restore", backupHandler.RestoreBackup)
	protected.DELETE("/backups/:id", backupHandler.DeleteBackup)

	return r
}
