package service

import (
	"errors"
	"testing"
	"time"

	"github.com/simfon/fate-pbc-rpg/internal/auth"
	"github.com/simfon/fate-pbc-rpg/internal/models"
	"gorm.io/gorm"
)

func mkInvite(t *testing.T, gdb *gorm.DB, code string, createdBy uint, useCount, maxUses int, expiresAt time.Time) *models.Invite {
	t.Helper()
	inv := models.Invite{
		Code:      code,
		CreatedBy: createdBy,
		UseCount:  useCount,
		MaxUses:   maxUses,
		ExpiresAt: expiresAt,
	}
	if err := gdb.Create(&inv).Error; err != nil {
		t.Fatalf("create invite %s: %v", code, err)
	}
	return &inv
}

func TestRegister(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb)

	admin := mkUser(t, gdb, "narratore", models.RoleAdmin)
	inv := mkInvite(t, gdb, "abc123", admin.ID, 0, 5, time.Now().Add(24*time.Hour))

	user, err := svc.Register(RegisterInput{
		Username:        "aria",
		Password:        "segreto1",
		PasswordConfirm: "segreto1",
		InviteCode:      "abc123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != models.RolePlayer {
		t.Errorf("Register() Role = %v, want player", user.Role)
	}
	if !auth.VerifyPassword(user.PasswordHash, "segreto1") {
		t.Error("Register() stored hash does not verify")
	}

	var got models.Invite
	gdb.First(&got, inv.ID)
	if got.UseCount != 1 {
		t.Errorf("invite UseCount = %d, want 1", got.UseCount)
	}
	if got.UsedBy == nil || *got.UsedBy != user.ID {
		t.Errorf("invite UsedBy = %v, want %d", got.UsedBy, user.ID)
	}
}

func TestRegister_Validation(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb)

	admin := mkUser(t, gdb, "narratore", models.RoleAdmin)
	mkInvite(t, gdb, "abc123", admin.ID, 0, 5, time.Now().Add(24*time.Hour))

	base := RegisterInput{
		Username:        "aria",
		Password:        "segreto1",
		PasswordConfirm: "segreto1",
		InviteCode:      "abc123",
	}

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"empty username", func(in *RegisterInput) { in.Username = "" }},
		{"empty password", func(in *RegisterInput) { in.Password = "" }},
		{"empty invite", func(in *RegisterInput) { in.InviteCode = "" }},
		{"password mismatch", func(in *RegisterInput) { in.PasswordConfirm = "altro" }},
		{"username too short", func(in *RegisterInput) { in.Username = "ab" }},
		{"password too short", func(in *RegisterInput) { in.Password, in.PasswordConfirm = "abc", "abc" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := svc.Register(in)
			if _, ok := AsValidation(err); !ok {
				t.Errorf("Register() error = %v, want validation error", err)
			}
		})
	}
}

func TestRegister_InviteGates(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb)

	admin := mkUser(t, gdb, "narratore", models.RoleAdmin)
	mkInvite(t, gdb, "scaduto", admin.ID, 0, 5, time.Now().Add(-time.Hour))
	mkInvite(t, gdb, "esaurito", admin.ID, 5, 5, time.Now().Add(24*time.Hour))

	tests := []struct {
		name string
		code string
	}{
		{"unknown code", "inesistente"},
		{"expired code", "scaduto"},
		{"exhausted code", "esaurito"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(RegisterInput{
				Username:        "aria",
				Password:        "segreto1",
				PasswordConfirm: "segreto1",
				InviteCode:      tt.code,
			})
			if !errors.Is(err, ErrInviteInvalid) {
				t.Errorf("Register() error = %v, want ErrInviteInvalid", err)
			}
		})
	}
}

func TestRegister_UsernameTaken(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb)

	admin := mkUser(t, gdb, "narratore", models.RoleAdmin)
	mkInvite(t, gdb, "abc123", admin.ID, 0, 5, time.Now().Add(24*time.Hour))
	mkUser(t, gdb, "aria", models.RolePlayer)

	_, err := svc.Register(RegisterInput{
		Username:        "aria",
		Password:        "segreto1",
		PasswordConfirm: "segreto1",
		InviteCode:      "abc123",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Register() error = %v, want ErrUsernameTaken", err)
	}
}

func TestLogin(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb)

	hash, _ := auth.HashPassword("segreto1")
	user := models.User{Username: "aria", PasswordHash: hash, Role: models.RolePlayer}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := svc.Login("aria", "segreto1"); err != nil {
		t.Errorf("Login() error = %v, want nil", err)
	}
	if _, err := svc.Login("aria", "sbagliata"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login("nessuno", "segreto1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown user) error = %v, want ErrInvalidCredentials", err)
	}

	gdb.Model(&models.User{}).Where("id = ?", user.ID).Update("is_banned", true)
	if _, err := svc.Login("aria", "segreto1"); !errors.Is(err, ErrUserBanned) {
		t.Errorf("Login(banned) error = %v, want ErrUserBanned", err)
	}
}

func TestChangePassword(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb)

	hash, _ := auth.HashPassword("vecchia1")
	user := models.User{Username: "aria", PasswordHash: hash, Role: models.RolePlayer}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "sbagliata", "nuova123", "nuova123"); err == nil {
		t.Error("ChangePassword(wrong current) should fail")
	}
	if err := svc.ChangePassword(user.ID, "vecchia1", "nuova123", "diversa"); err == nil {
		t.Error("ChangePassword(mismatch) should fail")
	}

	if err := svc.ChangePassword(user.ID, "vecchia1", "nuova123", "nuova123"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, err := svc.Login("aria", "nuova123"); err != nil {
		t.Errorf("Login(new password) error = %v", err)
	}
}

func TestSetRole(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewUserService(gdb)

	user := mkUser(t, gdb, "aria", models.RolePlayer)

	if err := svc.SetRole(user.ID, models.RoleDestiny); err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	var got models.User
	gdb.First(&got, user.ID)
	if got.Role != models.RoleDestiny {
		t.Errorf("Role = %v, want destiny", got.Role)
	}

	if _, ok := AsValidation(svc.SetRole(user.ID, "sovrano")); !ok {
		t.Error("SetRole(invalid) should be a validation error")
	}
}
