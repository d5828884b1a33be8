package auth

import (
	"testing"
	"time"

	"github.com/simfon/fate-pbc-rpg/internal/models"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "password123", false},
		{"empty password", "", false},
		{"long password", "a" + string(make([]byte, 70)), false}, // bcrypt max is 72 bytes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && hash == "" {
				t.Error("HashPassword() returned empty hash")
			}
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"correct password", hash, password, true},
		{"wrong password", hash, "wrongpassword", false},
		{"empty password", hash, "", false},
		{"invalid hash", "invalidhash", password, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.hash, tt.password); got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	secret := "test-secret-key"
	user := &models.User{Username: "aria", Role: models.RoleDestiny}
	user.ID = 42

	token, err := NewSessionToken(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionToken() error = %v", err)
	}

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr bool
	}{
		{"valid token", token, secret, false},
		{"wrong secret", token, "wrong-secret", true},
		{"invalid token", "invalid.token.here", secret, true},
		{"empty token", "", secret, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseSessionToken(tt.token, tt.secret)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSessionToken() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if claims.UserID != 42 {
				t.Errorf("ParseSessionToken() UserID = %v, want 42", claims.UserID)
			}
			if claims.Username != "aria" {
				t.Errorf("ParseSessionToken() Username = %v, want aria", claims.Username)
			}
			if claims.Role != models.RoleDestiny {
				t.Errorf("ParseSessionToken() Role = %v, want destiny", claims.Role)
			}
		})
	}
}

func TestSessionToken_Expired(t *testing.T) {
	secret := "test-secret"
	user := &models.User{Username: "aria", Role: models.RolePlayer}
	user.ID = 1

	token, err := NewSessionToken(user, secret, -time.Minute)
	if err != nil {
		t.Fatalf("NewSessionToken() error = %v", err)
	}

	claims, err := ParseSessionToken(token, secret)
	if err == nil {
		t.Error("ParseSessionToken() should return error for expired token")
	}
	if claims != nil {
		t.Error("ParseSessionToken() should return nil claims for expired token")
	}
}

func TestRoleChecks(t *testing.T) {
	tests := []struct {
		role       models.Role
		canNarrate bool
		canManage  bool
	}{
		{models.RolePlayer, false, false},
		{models.RoleDestiny, true, false},
		{models.RoleAdmin, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.CanNarrate(); got != tt.canNarrate {
				t.Errorf("CanNarrate() = %v, want %v", got, tt.canNarrate)
			}
			if got := tt.role.CanManage(); got != tt.canManage {
				t.Errorf("CanManage() = %v, want %v", got, tt.canManage)
			}
		})
	}
}
