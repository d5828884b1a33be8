package service

import (
	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

// Stats 是管理端首页的统计数字。
type Stats struct {
	Users      int64
	Characters int64
	Locations  int64
	Messages   int64
}

// CollectStats 统计四张核心表的行数。
func CollectStats(db *gorm.DB) (Stats, error) {
	var st Stats
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.User{}, &st.Users},
		{&models.Character{}, &st.Characters},
		{&models.Location{}, &st.Locations},
		{&models.Message{}, &st.Messages},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return Stats{}, err
		}
	}
	return st, nil
}
