package service

import (
	"errors"
	"sort"

	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

// CharacterService 封装角色的创建、查询、移动和管理端编辑。
type CharacterService struct {
	db *gorm.DB
}

func NewCharacterService(db *gorm.DB) *CharacterService {
	return &CharacterService{db: db}
}

// CharacterInput 是创建角色表单提交的字段。
type CharacterInput struct {
	Name        string
	HighConcept string
	Trouble     string
	AvatarURL   string
	Careful     int
	Clever      int
	Flashy      int
	Forceful    int
	Quick       int
	Sneaky      int
}

// validDistribution 是 FAE 的方法值分布：+3, +2, +2, +1, +1, +0。
var validDistribution = []int{3, 2, 2, 1, 1, 0}

// Create 校验必填字段和方法值分布后插入新角色，出生点为第一个地点。
func (s *CharacterService) Create(userID uint, in CharacterInput) (*models.Character, error) {
	if in.Name == "" || in.HighConcept == "" || in.Trouble == "" {
		return nil, validation("Nome, Concetto Chiave e Problema sono obbligatori.")
	}
	approaches := []int{in.Careful, in.Clever, in.Flashy, in.Forceful, in.Quick, in.Sneaky}
	sort.Sort(sort.Reverse(sort.IntSlice(approaches)))
	for i, v := range approaches {
		if v != validDistribution[i] {
			return nil, validation("Distribuzione approcci non valida. Usa: +3, +2, +2, +1, +1, +0")
		}
	}

	locationID := uint(FallbackLocationID)
	var first models.Location
	if err := s.db.Select("id").Order("id").First(&first).Error; err == nil {
		locationID = first.ID
	}

	ch := models.Character{
		UserID:            userID,
		Name:              in.Name,
		HighConcept:       in.HighConcept,
		Trouble:           in.Trouble,
		AvatarURL:         in.AvatarURL,
		Careful:           in.Careful,
		Clever:            in.Clever,
		Flashy:            in.Flashy,
		Forceful:          in.Forceful,
		Quick:             in.Quick,
		Sneaky:            in.Sneaky,
		FatePoints:        3,
		CurrentLocationID: locationID,
		IsActive:          true,
	}
	if err := s.db.Create(&ch).Error; err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *CharacterService) Get(id uint) (*models.Character, error) {
	var ch models.Character
	if err := s.db.First(&ch, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ch, nil
}

// GetOwned 取出角色并校验归属，非本人的角色一律 ErrNotOwner。
func (s *CharacterService) GetOwned(id, userID uint) (*models.Character, error) {
	ch, err := s.Get(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotOwner
		}
		return nil, err
	}
	if ch.UserID != userID {
		return nil, ErrNotOwner
	}
	return ch, nil
}

// ListByUser 返回用户的活跃角色。
func (s *CharacterService) ListByUser(userID uint) ([]models.Character, error) {
	var chars []models.Character
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&chars).Error
	if err != nil {
		return nil, err
	}
	return chars, nil
}

// Move 沿当前地点的指定方向移动角色，方向上没有边时返回 ErrInvalidMove。
func (s *CharacterService) Move(characterID, userID uint, direction string) error {
	ch, err := s.GetOwned(characterID, userID)
	if err != nil {
		return err
	}
	var loc models.Location
	if err := s.db.First(&loc, ch.CurrentLocationID).Error; err != nil {
		return err
	}
	target := edgeOf(&loc, direction)
	if target == nil {
		return ErrInvalidMove
	}
	return s.db.Model(&models.Character{}).
		Where("id = ?", characterID).
		Update("current_location_id", *target).Error
}

// CharacterRow 是管理端列表的一行：角色加拥有者和所在地名称。
type CharacterRow struct {
	models.Character
	OwnerUsername string
	LocationName  string
}

// AdminList 列出全部角色，附带拥有者和所在地。
func (s *CharacterService) AdminList() ([]CharacterRow, error) {
	var rows []CharacterRow
	err := s.db.Model(&models.Character{}).
		Select("characters.*, users.username AS owner_username, locations.name AS location_name").
		Joins("JOIN users ON users.id = characters.user_id").
		Joins("LEFT JOIN locations ON locations.id = characters.current_location_id").
		Order("characters.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// AdminUpdateInput 是管理端可编辑的游戏状态字段。
type AdminUpdateInput struct {
	FatePoints          int
	Stress1             bool
	Stress2             bool
	Stress3             bool
	MildConsequence     string
	ModerateConsequence string
	SevereConsequence   string
}

// AdminUpdate 由管理员全量覆盖角色的游戏状态。
func (s *CharacterService) AdminUpdate(id uint, in AdminUpdateInput) error {
	res := s.db.Model(&models.Character{}).Where("id = ?", id).Updates(map[string]interface{}{
		"fate_points":          in.FatePoints,
		"stress_1":             in.Stress1,
		"stress_2":             in.Stress2,
		"stress_3":             in.Stress3,
		"mild_consequence":     in.MildConsequence,
		"moderate_consequence": in.ModerateConsequence,
		"severe_consequence":   in.SevereConsequence,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdminDelete 硬删除角色（玩家侧的停用走 is_active）。
func (s *CharacterService) AdminDelete(id uint) error {
	return s.db.Delete(&models.Character{}, id).Error
}
