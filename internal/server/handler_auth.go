package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/simfon/fate-pbc-rpg/internal/auth"
	"github.com/simfon/fate-pbc-rpg/internal/service"
)

func (h *Handler) sessionTTL() time.Duration {
	return time.Duration(h.cfg.SessionTTLHours) * time.Hour
}

// Home 首页：已登录跳游戏，未登录展示入口。
func (h *Handler) Home(c *gin.Context) {
	if _, err := c.Cookie(auth.SessionCookie); err == nil {
		c.Redirect(http.StatusSeeOther, "/game")
		return
	}
	c.HTML(http.StatusOK, "home.html", gin.H{})
}

func (h *Handler) LoginPage(c *gin.Context) {
	if _, err := c.Cookie(auth.SessionCookie); err == nil {
		c.Redirect(http.StatusSeeOther, "/game")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{"Error": nil})
}

// Login 校验凭据并写入会话 cookie。
func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{"Error": "Inserisci username e password."})
		return
	}
	user, err := h.userSvc.Login(username, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": "Credenziali non valide."})
		case errors.Is(err, service.ErrUserBanned):
			c.HTML(http.StatusForbidden, "login.html", gin.H{"Error": "Il tuo account è stato sospeso."})
		default:
			log.Error().Err(err).Str("username", username).Msg("login")
			c.HTML(http.StatusInternalServerError, "login.html", gin.H{"Error": "Qualcosa è andato storto."})
		}
		return
	}
	token, err := auth.NewSessionToken(user, h.cfg.SessionSecret, h.sessionTTL())
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("login issue token")
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{"Error": "Qualcosa è andato storto."})
		return
	}
	auth.SetSessionCookie(c, token, h.sessionTTL())
	c.Redirect(http.StatusSeeOther, "/game")
}

func (h *Handler) RegisterPage(c *gin.Context) {
	if _, err := c.Cookie(auth.SessionCookie); err == nil {
		c.Redirect(http.StatusSeeOther, "/game")
		return
	}
	c.HTML(http.StatusOK, "register.html", gin.H{"Error": nil, "InviteCode": c.Query("code")})
}

// Register 消耗邀请码建号并自动登录。
func (h *Handler) Register(c *gin.Context) {
	in := service.RegisterInput{
		Username:        c.PostForm("username"),
		Password:        c.PostForm("password"),
		PasswordConfirm: c.PostForm("password_confirm"),
		InviteCode:      c.PostForm("invite_code"),
	}
	user, err := h.userSvc.Register(in)
	if err != nil {
		render := func(msg string) {
			c.HTML(http.StatusBadRequest, "register.html", gin.H{"Error": msg, "InviteCode": in.InviteCode})
		}
		if msg, ok := service.AsValidation(err); ok {
			render(msg)
			return
		}
		switch {
		case errors.Is(err, service.ErrInviteInvalid):
			render("Codice invito non valido, esaurito o scaduto.")
		case errors.Is(err, service.ErrUsernameTaken):
			render("Questo username è già in uso.")
		default:
			log.Error().Err(err).Str("username", in.Username).Msg("register")
			render("Qualcosa è andato storto.")
		}
		return
	}
	token, err := auth.NewSessionToken(user, h.cfg.SessionSecret, h.sessionTTL())
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("register issue token")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	auth.SetSessionCookie(c, token, h.sessionTTL())
	c.Redirect(http.StatusSeeOther, "/game/character/create")
}

// Logout 清除会话 cookie。
func (h *Handler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) ChangePasswordPage(c *gin.Context) {
	c.HTML(http.StatusOK, "change_password.html", gin.H{"Error": nil, "Done": false})
}

// ChangePassword 校验旧密码后更新密码。
func (h *Handler) ChangePassword(c *gin.Context) {
	err := h.userSvc.ChangePassword(
		auth.GetUserID(c),
		c.PostForm("current_password"),
		c.PostForm("new_password"),
		c.PostForm("new_password_confirm"),
	)
	if err != nil {
		if msg, ok := service.AsValidation(err); ok {
			c.HTML(http.StatusBadRequest, "change_password.html", gin.H{"Error": msg, "Done": false})
			return
		}
		log.Error().Err(err).Uint("user_id", auth.GetUserID(c)).Msg("change password")
		c.HTML(http.StatusInternalServerError, "change_password.html", gin.H{"Error": "Qualcosa è andato storto.", "Done": false})
		return
	}
	c.HTML(http.StatusOK, "change_password.html", gin.H{"Error": nil, "Done": true})
}
