package service

import (
	"errors"
	"time"

	"github.com/simfon/fate-pbc-rpg/internal/auth"
	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

// UserService 封装注册、登录、改密和管理端的用户操作。
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RegisterInput 是注册表单的字段。
type RegisterInput struct {
	Username        string
	Password        string
	PasswordConfirm string
	InviteCode      string
}

// Register 校验表单和邀请码后创建用户并消耗一次邀请额度。
// 兑换计数和建号是两条语句，没有事务链接；并发兑换最后一个名额
// 可能双重消耗，这是沿用的已知缺口。
func (s *UserService) Register(in RegisterInput) (*models.User, error) {
	if in.Username == "" || in.Password == "" || in.InviteCode == "" {
		return nil, validation("Tutti i campi sono obbligatori.")
	}
	if in.Password != in.PasswordConfirm {
		return nil, validation("Le password non coincidono.")
	}
	if len(in.Username) < 3 || len(in.Username) > 30 {
		return nil, validation("Lo username deve essere tra 3 e 30 caratteri.")
	}
	if len(in.Password) < 6 {
		return nil, validation("La password deve essere di almeno 6 caratteri.")
	}

	var invite models.Invite
	err := s.db.Where("code = ? AND use_count < max_uses AND expires_at > ?", in.InviteCode, time.Now()).
		First(&invite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteInvalid
		}
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", in.Username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{Username: in.Username, PasswordHash: hash, Role: models.RolePlayer}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	err = s.db.Model(&models.Invite{}).Where("id = ?", invite.ID).Updates(map[string]interface{}{
		"use_count": gorm.Expr("use_count + 1"),
		"used_by":   user.ID,
	}).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login 校验用户名密码，封禁账号不允许进入。
func (s *UserService) Login(username, password string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}
	return &user, nil
}

// ChangePassword 校验旧密码后更新为新密码。
func (s *UserService) ChangePassword(userID uint, current, newPassword, confirm string) error {
	if current == "" || newPassword == "" {
		return validation("Tutti i campi sono obbligatori.")
	}
	if newPassword != confirm {
		return validation("Le password non coincidono.")
	}
	if len(newPassword) < 6 {
		return validation("La password deve essere di almeno 6 caratteri.")
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return err
	}
	if !auth.VerifyPassword(user.PasswordHash, current) {
		return validation("La password attuale non è corretta.")
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", hash).Error
}

// UserRow 是管理端用户列表的一行。
type UserRow struct {
	models.User
	CharacterCount int
}

// AdminList 列出全部用户及其角色数。
func (s *UserService) AdminList() ([]UserRow, error) {
	var rows []UserRow
	err := s.db.Model(&models.User{}).
		Select("users.*, (SELECT COUNT(*) FROM characters WHERE characters.user_id = users.id) AS character_count").
		Order("users.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetRole 由管理员改变用户角色，角色必须属于封闭枚举。
func (s *UserService) SetRole(userID uint, role models.Role) error {
	if !role.Valid() {
		return validation("Ruolo non valido")
	}
	return s.db.Model(&models.User{}).Where("id = ?", userID).Update("role", role).Error
}

// SetBanned 设置或解除封禁。
func (s *UserService) SetBanned(userID uint, banned bool) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).Update("is_banned", banned).Error
}
