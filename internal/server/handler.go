package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simfon/fate-pbc-rpg/internal/config"
	"github.com/simfon/fate-pbc-rpg/internal/service"
	"gorm.io/gorm"
)

// timeNow 可在测试里替换。
var timeNow = time.Now

// Handler 聚合所有 HTTP handler，依赖注入 service 层。
type Handler struct {
	cfg     config.Config
	db      *gorm.DB
	userSvc *service.UserService
	invSvc  *service.InviteService
	locSvc  *service.LocationService
	charSvc *service.CharacterService
	actSvc  *service.ActionService
	msgSvc  *service.MessageService
}

func NewHandler(cfg config.Config, db *gorm.DB) *Handler {
	return &Handler{
		cfg:     cfg,
		db:      db,
		userSvc: service.NewUserService(db),
		invSvc:  service.NewInviteService(db),
		locSvc:  service.NewLocationService(db),
		charSvc: service.NewCharacterService(db),
		actSvc:  service.NewActionService(db),
		msgSvc:  service.NewMessageService(db),
	}
}

// errorPage 渲染通用错误页。
func (h *Handler) errorPage(c *gin.Context, status int, title, message string) {
	c.HTML(status, "error.html", gin.H{"Title": title, "Message": message})
}

// notFound 渲染 404 页面。
func (h *Handler) notFound(c *gin.Context, message string) {
	h.errorPage(c, http.StatusNotFound, "Non trovato", message)
}

// redirectBack 跳回来源页面，没有 Referer 时退到给定路径。
func redirectBack(c *gin.Context, fallback string) {
	target := c.Request.Referer()
	if target == "" {
		target = fallback
	}
	c.Redirect(http.StatusSeeOther, target)
}

// paramUint 解析路径参数为正整数 id，非法时返回 0。
func paramUint(c *gin.Context, name string) uint {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		return 0
	}
	return uint(v)
}

// formUintPtr 解析可空的表单 id 字段，空串或非法值映射为 nil。
func formUintPtr(c *gin.Context, name string) *uint {
	raw := c.PostForm(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return nil
	}
	u := uint(v)
	return &u
}

// formInt 解析整数表单字段，非法时取 0。
func formInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.PostForm(name))
	if err != nil {
		return 0
	}
	return v
}

// formBool 把 checkbox 的 "on" 映射为 true。
func formBool(c *gin.Context, name string) bool {
	v := c.PostForm(name)
	return v == "on" || v == "1" || v == "true"
}
