package service

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

const (
	inviteTTL     = 7 * 24 * time.Hour
	inviteMaxUses = 5
)

// InviteService 管理有限次数、带过期时间的注册邀请码。
type InviteService struct {
	db *gorm.DB
}

func NewInviteService(db *gorm.DB) *InviteService {
	return &InviteService{db: db}
}

// Create 生成一个随机十六进制邀请码，七天有效，默认五次额度。
func (s *InviteService) Create(createdBy uint) (*models.Invite, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	invite := models.Invite{
		Code:      hex.EncodeToString(b),
		CreatedBy: createdBy,
		MaxUses:   inviteMaxUses,
		ExpiresAt: time.Now().Add(inviteTTL),
	}
	if err := s.db.Create(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// InviteRow 是管理端邀请列表的一行。
type InviteRow struct {
	models.Invite
	CreatorName string
	UsedByName  string
}

// List 列出全部邀请码，附带创建者和最近使用者的用户名。
func (s *InviteService) List() ([]InviteRow, error) {
	var rows []InviteRow
	err := s.db.Model(&models.Invite{}).
		Select("invites.*, creator.username AS creator_name, used.username AS used_by_name").
		Joins("JOIN users creator ON creator.id = invites.created_by").
		Joins("LEFT JOIN users used ON used.id = invites.used_by").
		Order("invites.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete 只允许删除额度尚未用完的邀请码。
func (s *InviteService) Delete(id uint) error {
	return s.db.Where("id = ? AND use_count < max_uses", id).Delete(&models.Invite{}).Error
}
