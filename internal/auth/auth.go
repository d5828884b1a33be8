package auth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/simfon/fate-pbc-rpg/internal/config"
	"github.com/simfon/fate-pbc-rpg/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SessionCookie 是承载会话令牌的 cookie 名。
const SessionCookie = "fate_session"

// SessionClaims 对应服务端会话内容：userId、username、role。
type SessionClaims struct {
	UserID   uint        `json:"uid"`
	Username string      `json:"uname"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func VerifyPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NewSessionToken 为用户签发会话令牌。
func NewSessionToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseSessionToken(tokenStr, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// SetSessionCookie 写入 HttpOnly 会话 cookie。
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", false, true)
}

func ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// RequireAuth 校验会话 cookie，加载用户并在每个请求上刷新 last_seen，
// 使其成为近似的在线心跳信号。未登录或被封禁时重定向到登录页。
func RequireAuth(cfg config.Config, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(SessionCookie)
		if err != nil || tokenStr == "" {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		claims, err := ParseSessionToken(tokenStr, cfg.SessionSecret)
		if err != nil {
			ClearSessionCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			ClearSessionCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		if user.IsBanned {
			ClearSessionCookie(c)
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		Touch(db, user.ID, time.Now())

		c.Set("userID", user.ID)
		c.Set("username", user.Username)
		c.Set("role", user.Role)
		c.Next()
	}
}

// Touch 更新用户的 last_seen 心跳，失败时静默忽略。
func Touch(db *gorm.DB, userID uint, now time.Time) {
	_ = db.Model(&models.User{}).Where("id = ?", userID).Update("last_seen", now).Error
}

// RequireNarrator 仅放行 destiny 和 admin。
func RequireNarrator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetRole(c).CanNarrate() {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// RequireAdmin 仅放行 admin。
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetRole(c).CanManage() {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Title":   "Accesso negato",
				"Message": "Solo gli Amministratori possono accedere a questa area.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) uint {
	if v, ok := c.Get("userID"); ok {
		if id, ok2 := v.(uint); ok2 {
			return id
		}
	}
	return 0
}

func GetUsername(c *gin.Context) string {
	if v, ok := c.Get("username"); ok {
		if s, ok2 := v.(string); ok2 {
			return s
		}
	}
	return ""
}

func GetRole(c *gin.Context) models.Role {
	if v, ok := c.Get("role"); ok {
		if r, ok2 := v.(models.Role); ok2 {
			return r
		}
	}
	return ""
}
