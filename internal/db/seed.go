package db

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/simfon/fate-pbc-rpg/internal/auth"
	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

// Seed 在用户表为空时写入初始数据：管理员、四个互相连接的起始地点
// 和一个七天有效的邀请码。重复调用不会改动已有数据。
func Seed(gdb *gorm.DB) error {
	var userCount int64
	if err := gdb.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		return nil
	}

	hash, err := auth.HashPassword("admin123")
	if err != nil {
		return err
	}
	admin := models.User{Username: "Narratore", PasswordHash: hash, Role: models.RoleAdmin}
	if err := gdb.Create(&admin).Error; err != nil {
		return err
	}

	piazza := models.Location{
		Name:        "Piazza del Mercato",
		Description: "Il cuore pulsante della città. Bancarelle colorate vendono ogni sorta di merce: spezie esotiche, stoffe pregiate, e misteriosi artefatti. Il brusio della folla si mescola al profumo del pane appena sfornato.",
		ImageURL:    "https://images.unsplash.com/photo-1555529669-e69e7aa0ba9a?w=800",
	}
	taverna := models.Location{
		Name:        "La Taverna del Drago Rosso",
		Description: "Un'accogliente taverna con travi di legno scuro e un grande camino sempre acceso. L'oste, un uomo corpulento dalla barba grigia, serve birra scura e stufato fumante. Avventurieri e mercanti scambiano storie agli angoli bui.",
		ImageURL:    "https://images.unsplash.com/photo-1514933651103-005eec06c04b?w=800",
	}
	tempio := models.Location{
		Name:        "Il Tempio della Luna",
		Description: "Un antico santuario di marmo bianco, illuminato da candele argentate. L'aria è densa di incenso e preghiere sussurrate. Sacerdotesse in vesti pallide si muovono silenziose tra le colonne.",
		ImageURL:    "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800",
	}
	foresta := models.Location{
		Name:        "La Foresta dei Sussurri",
		Description: "Alberi antichi i cui rami si intrecciano a formare una volta naturale. La luce filtra a malapena, creando giochi d'ombra misteriosi. Si dice che gli spiriti degli antichi custodi vaghino ancora tra questi sentieri.",
		ImageURL:    "https://images.unsplash.com/photo-1448375240586-882707db888b?w=800",
	}
	for _, loc := range []*models.Location{&piazza, &taverna, &tempio, &foresta} {
		if err := gdb.Create(loc).Error; err != nil {
			return err
		}
	}

	// 双向连接：广场北=神庙、东=酒馆、西=森林。
	links := []struct {
		id                       uint
		north, south, east, west *uint
	}{
		{piazza.ID, &tempio.ID, nil, &taverna.ID, &foresta.ID},
		{taverna.ID, nil, nil, nil, &piazza.ID},
		{tempio.ID, nil, &piazza.ID, nil, nil},
		{foresta.ID, nil, nil, &piazza.ID, nil},
	}
	for _, l := range links {
		err := gdb.Model(&models.Location{}).Where("id = ?", l.id).Updates(map[string]interface{}{
			"north_id": l.north,
			"south_id": l.south,
			"east_id":  l.east,
			"west_id":  l.west,
		}).Error
		if err != nil {
			return err
		}
	}

	code, err := randomCode()
	if err != nil {
		return err
	}
	invite := models.Invite{
		Code:      code,
		CreatedBy: admin.ID,
		MaxUses:   5,
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	if err := gdb.Create(&invite).Error; err != nil {
		return err
	}

	log.Info().Str("username", admin.Username).Str("invite_code", code).Msg("seeded initial data")
	return nil
}

func randomCode() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
