package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/simfon/fate-pbc-rpg/internal/db"
	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Connect("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return gdb
}

func mkUser(t *testing.T, gdb *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := models.User{Username: username, PasswordHash: "x", Role: role}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return &user
}

func mkLocation(t *testing.T, gdb *gorm.DB, name string) *models.Location {
	t.Helper()
	loc := models.Location{Name: name, Description: "descrizione di " + name, IsPublic: true}
	if err := gdb.Create(&loc).Error; err != nil {
		t.Fatalf("create location %s: %v", name, err)
	}
	return &loc
}

func mkCharacter(t *testing.T, gdb *gorm.DB, userID, locationID uint, name string) *models.Character {
	t.Helper()
	ch := models.Character{
		UserID:            userID,
		Name:              name,
		HighConcept:       "Cacciatore di segreti",
		Trouble:           "Troppo curioso",
		Careful:           3,
		Clever:            2,
		Flashy:            2,
		Forceful:          1,
		Quick:             1,
		Sneaky:            0,
		FatePoints:        3,
		CurrentLocationID: locationID,
		IsActive:          true,
	}
	if err := gdb.Create(&ch).Error; err != nil {
		t.Fatalf("create character %s: %v", name, err)
	}
	return &ch
}

// touchUser 把用户的 last_seen 设为指定时刻，模拟心跳。
func touchUser(t *testing.T, gdb *gorm.DB, userID uint, at time.Time) {
	t.Helper()
	if err := gdb.Model(&models.User{}).Where("id = ?", userID).Update("last_seen", at).Error; err != nil {
		t.Fatalf("touch user %d: %v", userID, err)
	}
}

func mkMessage(t *testing.T, gdb *gorm.DB, msg models.Message) *models.Message {
	t.Helper()
	if err := gdb.Create(&msg).Error; err != nil {
		t.Fatalf("create message: %v", err)
	}
	return &msg
}

func uintPtr(v uint) *uint { return &v }
