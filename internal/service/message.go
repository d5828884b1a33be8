package service

import (
	"strings"
	"time"

	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

const (
	// feedWindow 限定消息流只回放最近一小时。
	feedWindow = time.Hour
	// feedInitialLimit 是首次加载返回的最大消息数。
	feedInitialLimit = 25
	// presenceWindow 内有心跳的用户才算在线。
	presenceWindow = 5 * time.Minute
)

// MessageService 负责消息的写入、按地点的增量轮询和在场角色计算。
// 轮询是无状态的幂等读取，服务端不保存任何订阅状态。
type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

// PostInput 是发消息接口的输入。
type PostInput struct {
	CharacterID uint
	LocationID  uint
	Content     string
	IsAction    bool
	IsOOC       bool
	IsDestiny   bool
}

// Post 写入一条消息。命运消息要求叙事权限并强制匿名；普通消息要求
// 角色归属于发送者。
func (s *MessageService) Post(userID uint, role models.Role, in PostInput) error {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return validation("Messaggio vuoto")
	}

	msg := models.Message{
		LocationID: in.LocationID,
		UserID:     userID,
		Content:    content,
	}
	if in.IsDestiny {
		if !role.CanNarrate() {
			return ErrNotOwner
		}
		msg.IsDestiny = true
	} else {
		var ch models.Character
		err := s.db.Where("id = ? AND user_id = ?", in.CharacterID, userID).First(&ch).Error
		if err != nil {
			return ErrNotOwner
		}
		msg.CharacterID = &ch.ID
		msg.IsAction = in.IsAction
		msg.IsOOC = in.IsOOC
	}
	return s.db.Create(&msg).Error
}

// MessageDTO 是带显示信息的消息行，命运消息没有角色名和头像。
type MessageDTO struct {
	ID              uint
	LocationID      uint
	CharacterID     *uint
	CharacterName   string
	CharacterAvatar string
	Username        string
	Content         string
	IsAction        bool
	IsDestiny       bool
	IsOOC           bool
	CreatedAt       time.Time
}

// Feed 返回某地点最近一小时内的消息。after 大于 0 时做增量轮询，
// 只取更新的消息；否则取窗口内最新的 25 条（倒序取出后翻转为时间序）。
func (s *MessageService) Feed(locationID, after uint, now time.Time) ([]MessageDTO, error) {
	since := now.Add(-feedWindow)
	q := s.db.Where("location_id = ? AND created_at > ?", locationID, since)

	var msgs []models.Message
	if after > 0 {
		err := q.Where("id > ?", after).Order("created_at, id").Find(&msgs).Error
		if err != nil {
			return nil, err
		}
	} else {
		err := q.Order("created_at desc, id desc").Limit(feedInitialLimit).Find(&msgs).Error
		if err != nil {
			return nil, err
		}
		for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
			msgs[i], msgs[j] = msgs[j], msgs[i]
		}
	}
	return s.decorate(msgs)
}

// PresentCharacter 是在场列表的一行。
type PresentCharacter struct {
	ID        uint
	Name      string
	AvatarURL string
	Username  string
}

// Present 计算在场角色：位置匹配、角色活跃且拥有者的 last_seen
// 在五分钟窗口内。心跳由认证中间件在每个请求上刷新。
func (s *MessageService) Present(locationID uint, now time.Time) ([]PresentCharacter, error) {
	cutoff := now.Add(-presenceWindow)
	var rows []PresentCharacter
	err := s.db.Model(&models.Character{}).
		Select("characters.id, characters.name, characters.avatar_url, users.username").
		Joins("JOIN users ON users.id = characters.user_id").
		Where("characters.current_location_id = ? AND characters.is_active = ? AND users.last_seen > ?",
			locationID, true, cutoff).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Recent 返回某地点最新的 limit 条消息，时间序，不做窗口限制。
// 用于进入游戏页面时的首屏历史。
func (s *MessageService) Recent(locationID uint, limit int) ([]MessageDTO, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var msgs []models.Message
	err := s.db.Where("location_id = ?", locationID).
		Order("created_at desc, id desc").Limit(limit).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return s.decorate(msgs)
}

// History 是管理端的消息审查视图，按时间倒序，上限 500 条。
func (s *MessageService) History(locationID uint) ([]MessageDTO, error) {
	var msgs []models.Message
	err := s.db.Where("location_id = ?", locationID).
		Order("created_at desc, id desc").Limit(500).Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return s.decorate(msgs)
}

// Delete 删除一条消息，返回它所属的地点以便管理页跳回。
func (s *MessageService) Delete(id uint) (uint, error) {
	var msg models.Message
	if err := s.db.Select("id", "location_id").First(&msg, id).Error; err != nil {
		return 0, ErrNotFound
	}
	if err := s.db.Delete(&models.Message{}, id).Error; err != nil {
		return 0, err
	}
	return msg.LocationID, nil
}

// decorate 批量补齐角色名、头像和用户名（对齐 LEFT JOIN 的语义，
// 命运消息保持匿名）。
func (s *MessageService) decorate(msgs []models.Message) ([]MessageDTO, error) {
	charIDs := make([]uint, 0, len(msgs))
	userIDs := make([]uint, 0, len(msgs))
	seenChar := make(map[uint]struct{}, len(msgs))
	seenUser := make(map[uint]struct{}, len(msgs))
	for _, m := range msgs {
		if m.CharacterID != nil {
			if _, ok := seenChar[*m.CharacterID]; !ok {
				seenChar[*m.CharacterID] = struct{}{}
				charIDs = append(charIDs, *m.CharacterID)
			}
		}
		if _, ok := seenUser[m.UserID]; !ok {
			seenUser[m.UserID] = struct{}{}
			userIDs = append(userIDs, m.UserID)
		}
	}

	chars := make(map[uint]models.Character, len(charIDs))
	if len(charIDs) > 0 {
		var rows []models.Character
		if err := s.db.Select("id", "name", "avatar_url").Where("id IN ?", charIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, ch := range rows {
			chars[ch.ID] = ch
		}
	}
	usernames := make(map[uint]string, len(userIDs))
	if len(userIDs) > 0 {
		var rows []models.User
		if err := s.db.Select("id", "username").Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
			return nil, err
		}
		for _, u := range rows {
			usernames[u.ID] = u.Username
		}
	}

	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		dto := MessageDTO{
			ID:          m.ID,
			LocationID:  m.LocationID,
			CharacterID: m.CharacterID,
			Username:    usernames[m.UserID],
			Content:     m.Content,
			IsAction:    m.IsAction,
			IsDestiny:   m.IsDestiny,
			IsOOC:       m.IsOOC,
			CreatedAt:   m.CreatedAt,
		}
		if m.CharacterID != nil {
			if ch, ok := chars[*m.CharacterID]; ok {
				dto.CharacterName = ch.Name
				dto.CharacterAvatar = ch.AvatarURL
			}
		}
		out = append(out, dto)
	}
	return out, nil
}
