package models

import "time"

// Role 是用户角色的封闭枚举：player < destiny ≈ admin。
type Role string

const (
	RolePlayer  Role = "player"
	RoleDestiny Role = "destiny"
	RoleAdmin   Role = "admin"
)

// Valid 判断角色是否属于枚举。
func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleDestiny || r == RoleAdmin
}

// CanNarrate 判断角色是否可以发布"命运"匿名叙事消息。
func (r Role) CanNarrate() bool {
	return r == RoleDestiny || r == RoleAdmin
}

// CanManage 判断角色是否可以访问管理后台。
func (r Role) CanManage() bool {
	return r == RoleAdmin
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"size:16;not null;default:player"`
	IsBanned     bool   `gorm:"not null;default:false"`
	LastSeen     *time.Time
	CreatedAt    time.Time
}

// Location 是地点图中的节点，四个方向的边都是可空的自引用。
// 约定：边是双向的，A.NorthID==B 时应有 B.SouthID==A。
type Location struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:128;not null"`
	Description string `gorm:"type:text;not null"`
	ImageURL    string
	NorthID     *uint `gorm:"index"`
	SouthID     *uint `gorm:"index"`
	EastID      *uint `gorm:"index"`
	WestID      *uint `gorm:"index"`
	IsPublic    bool  `gorm:"not null;default:true"`
	CreatedAt   time.Time
}

type Character struct {
	ID          uint   `gorm:"primaryKey"`
	UserID      uint   `gorm:"index;not null"`
	Name        string `gorm:"size:128;not null"`
	HighConcept string `gorm:"not null"`
	Trouble     string `gorm:"not null"`
	Aspect1     string `gorm:"column:aspect_1"`
	Aspect2     string `gorm:"column:aspect_2"`
	Aspect3     string `gorm:"column:aspect_3"`

	// Fate Accelerated 的六个方法值（+0 到 +3）。
	Careful  int `gorm:"not null;default:1"`
	Clever   int `gorm:"not null;default:1"`
	Flashy   int `gorm:"not null;default:1"`
	Forceful int `gorm:"not null;default:1"`
	Quick    int `gorm:"not null;default:1"`
	Sneaky   int `gorm:"not null;default:1"`

	FatePoints int  `gorm:"not null;default:3"`
	Stress1    bool `gorm:"column:stress_1;not null;default:false"`
	Stress2    bool `gorm:"column:stress_2;not null;default:false"`
	Stress3    bool `gorm:"column:stress_3;not null;default:false"`

	MildConsequence     string
	ModerateConsequence string
	SevereConsequence   string

	CurrentLocationID uint `gorm:"index;not null;default:1"`
	AvatarURL         string
	IsActive          bool `gorm:"not null;default:true"`
	CreatedAt         time.Time
}

// ApproachKeys 是六个方法的规范顺序。
var ApproachKeys = []string{"careful", "clever", "flashy", "forceful", "quick", "sneaky"}

// Approach 按小写 key 取出对应的方法值，key 非法时返回 false。
func (c *Character) Approach(key string) (int, bool) {
	switch key {
	case "careful":
		return c.Careful, true
	case "clever":
		return c.Clever, true
	case "flashy":
		return c.Flashy, true
	case "forceful":
		return c.Forceful, true
	case "quick":
		return c.Quick, true
	case "sneaky":
		return c.Sneaky, true
	}
	return 0, false
}

// Message 一旦写入即不可变；CharacterID 为空表示匿名的"命运"叙事。
type Message struct {
	ID          uint `gorm:"primaryKey"`
	LocationID  uint `gorm:"index:idx_msg_location;not null"`
	CharacterID *uint
	UserID      uint   `gorm:"not null"`
	Content     string `gorm:"type:text;not null"`
	IsAction    bool   `gorm:"not null;default:false"`
	IsDestiny   bool   `gorm:"not null;default:false"`
	IsOOC       bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
}

type Invite struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"uniqueIndex;size:64;not null"`
	CreatedBy uint   `gorm:"not null"`
	UsedBy    *uint
	UseCount  int       `gorm:"not null;default:0"`
	MaxUses   int       `gorm:"not null;default:5"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// Usable 判断邀请码在 now 时刻是否仍可兑换。
func (i *Invite) Usable(now time.Time) bool {
	return i.UseCount < i.MaxUses && now.Before(i.ExpiresAt)
}
