package service

import (
	"fmt"
	mathrand "math/rand"
	"strconv"
	"strings"

	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

// ActionService 解析游戏动作：命运点、压力格和 4dF 掷骰。
// 每个动作都先校验归属，成功的变更会在指定地点追加一条动作消息。
type ActionService struct {
	db    *gorm.DB
	chars *CharacterService
}

func NewActionService(db *gorm.DB) *ActionService {
	return &ActionService{db: db, chars: NewCharacterService(db)}
}

// approachNames 是方法的本地化显示名。
var approachNames = map[string]string{
	"careful":  "Cauto",
	"clever":   "Ingegnoso",
	"flashy":   "Appariscente",
	"forceful": "Vigoroso",
	"quick":    "Rapido",
	"sneaky":   "Furtivo",
}

// rollDie 产生一个 Fate 骰：-1、0 或 +1。测试可替换。
var rollDie = func() int { return mathrand.Intn(3) - 1 }

// Fate 处理命运点。spend 只在余额大于 0 时扣减，余额为 0 是静默
// 空操作，不产生消息；gain 无上限递增。
func (s *ActionService) Fate(characterID, userID uint, action string, locationID uint) error {
	ch, err := s.chars.GetOwned(characterID, userID)
	if err != nil {
		return err
	}

	points := ch.FatePoints
	var content string
	switch {
	case action == "spend" && points > 0:
		points--
		content = fmt.Sprintf("✨ %s spende un Punto Fato (%d rimasti)", ch.Name, points)
	case action == "gain":
		points++
		content = fmt.Sprintf("✨ %s guadagna un Punto Fato (%d totali)", ch.Name, points)
	}
	if content == "" {
		return nil
	}

	err = s.db.Model(&models.Character{}).Where("id = ?", ch.ID).Update("fate_points", points).Error
	if err != nil {
		return err
	}
	return s.appendAction(locationID, ch, userID, content)
}

// ToggleStress 翻转编号 1-3 的压力格，并按结果写入"承受/恢复"消息。
func (s *ActionService) ToggleStress(characterID, userID uint, box int, locationID uint) error {
	if box < 1 || box > 3 {
		return validation("Box stress non valido.")
	}
	ch, err := s.chars.GetOwned(characterID, userID)
	if err != nil {
		return err
	}

	current := [3]bool{ch.Stress1, ch.Stress2, ch.Stress3}[box-1]
	newValue := !current
	column := fmt.Sprintf("stress_%d", box)
	err = s.db.Model(&models.Character{}).Where("id = ?", ch.ID).Update(column, newValue).Error
	if err != nil {
		return err
	}

	var content string
	if newValue {
		content = fmt.Sprintf("💢 %s subisce stress (box %d)", ch.Name, box)
	} else {
		content = fmt.Sprintf("💚 %s recupera stress (box %d)", ch.Name, box)
	}
	return s.appendAction(locationID, ch, userID, content)
}

// Roll 掷四个 Fate 骰，加上所选方法值和修正值，把结果以管道分隔的
// 结构化格式写成一条消息，供前端按位解析渲染。
func (s *ActionService) Roll(characterID, userID uint, approach string, modifier string, locationID uint) error {
	ch, err := s.chars.GetOwned(characterID, userID)
	if err != nil {
		return err
	}
	score, ok := ch.Approach(approach)
	if !ok {
		return validation("Approccio non valido.")
	}

	dice := make([]int, 4)
	diceTotal := 0
	for i := range dice {
		dice[i] = rollDie()
		diceTotal += dice[i]
	}
	mod, err := strconv.Atoi(modifier)
	if err != nil {
		mod = 0
	}
	total := diceTotal + score + mod

	diceStrs := make([]string, len(dice))
	for i, d := range dice {
		diceStrs[i] = strconv.Itoa(d)
	}
	content := fmt.Sprintf("🎲 ROLL|%s|%s|%d|%d|%d|%d|%s",
		approach, strings.Join(diceStrs, ","), diceTotal, score, mod, total, approachNames[approach])

	return s.appendAction(locationID, ch, userID, content)
}

func (s *ActionService) appendAction(locationID uint, ch *models.Character, userID uint, content string) error {
	msg := models.Message{
		LocationID:  locationID,
		CharacterID: &ch.ID,
		UserID:      userID,
		Content:     content,
		IsAction:    true,
	}
	return s.db.Create(&msg).Error
}
