package server

import (
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/simfon/fate-pbc-rpg/internal/auth"
	"github.com/simfon/fate-pbc-rpg/internal/config"
	"github.com/simfon/fate-pbc-rpg/internal/metrics"
	"github.com/simfon/fate-pbc-rpg/internal/mw"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupRouter 统一初始化 Gin 中间件、页面路由和管理后台。
func SetupRouter(cfg config.Config, db *gorm.DB) *gin.Engine {
	h := NewHandler(cfg, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))
	// 控制单个 IP+路由的速率，轮询端点也在保护范围内。
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.SetFuncMap(template.FuncMap{
		"deref": func(p *uint) uint {
			if p == nil {
				return 0
			}
			return *p
		},
	})
	r.LoadHTMLGlob("web/templates/*.html")
	r.Static("/static", "./web/static")

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", h.Home)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", h.Register)
	r.GET("/logout", h.Logout)
	r.POST("/logout", h.Logout)

	authed := r.Group("")
	authed.Use(auth.RequireAuth(cfg, db))

	authed.GET("/change-password", h.ChangePasswordPage)
	authed.POST("/change-password", h.ChangePassword)

	game := authed.Group("/game")
	game.GET("", h.GameDashboard)
	game.GET("/character/create", h.CharacterCreatePage)
	game.POST("/character/create", h.CharacterCreate)
	game.GET("/character/:id", h.CharacterView)
	game.GET("/play/:characterId", h.Play)
	game.POST("/move/:characterId/:direction", h.Move)

	api := authed.Group("/api")
	api.POST("/message", h.PostMessage)
	api.GET("/messages/:locationId", h.PollMessages)
	api.GET("/present/:locationId", h.PollPresent)
	api.POST("/character/:id/fate", h.FatePoint)
	api.POST("/character/:id/stress/:box", h.ToggleStress)
	api.POST("/roll", h.Roll)

	admin := authed.Group("/admin")
	admin.Use(auth.RequireAdmin())
	admin.GET("", h.AdminDashboard)
	admin.GET("/users", h.AdminUsers)
	admin.POST("/users/:id/role", h.AdminSetRole)
	admin.POST("/users/:id/destiny", h.AdminGrantDestiny)
	admin.POST("/users/:id/remove-destiny", h.AdminRevokeDestiny)
	admin.POST("/users/:id/ban", h.AdminBan)
	admin.POST("/users/:id/unban", h.AdminUnban)
	admin.GET("/locations", h.AdminLocations)
	admin.GET("/locations/new", h.AdminLocationNew)
	admin.GET("/locations/:id/edit", h.AdminLocationEdit)
	admin.POST("/locations", h.AdminLocationCreate)
	admin.POST("/locations/:id", h.AdminLocationUpdate)
	admin.POST("/locations/:id/delete", h.AdminLocationDelete)
	admin.GET("/invites", h.AdminInvites)
	admin.POST("/invites/create", h.AdminInviteCreate)
	admin.POST("/invites/:id/delete", h.AdminInviteDelete)
	admin.GET("/characters", h.AdminCharacters)
	admin.GET("/characters/:id/edit", h.AdminCharacterEdit)
	admin.POST("/characters/:id", h.AdminCharacterUpdate)
	admin.POST("/characters/:id/delete", h.AdminCharacterDelete)
	admin.GET("/messages", h.AdminMessages)
	admin.POST("/messages/:id/delete", h.AdminMessageDelete)

	r.NoRoute(func(c *gin.Context) {
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"Title":   "Pagina non trovata",
			"Message": "La pagina che cerchi si è persa nelle nebbie del tempo...",
		})
	})

	return r
}
