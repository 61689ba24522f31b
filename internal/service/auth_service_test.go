package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/paxcalc-backend/internal/config"
)

func newTestAuth() (*AuthService, *fakeAdminRepo) {
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	repo := &fakeAdminRepo{}
	return NewAuthService(cfg, repo), repo
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuth()
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, "chief@example.com", "Chief Steward", "correct horse")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	resp, err := svc.Login(ctx, "chief@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Admin.ID != admin.ID {
		t.Errorf("Admin.ID = %d, want %d", resp.Admin.ID, admin.ID)
	}

	claims, err := svc.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.AdminID != admin.ID {
		t.Errorf("AdminID = %d, want %d", claims.AdminID, admin.ID)
	}

	if _, err := svc.Login(ctx, "chief@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	svc, _ := newTestAuth()
	token, err := svc.GenerateAdminToken(7)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour}, &fakeAdminRepo{})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestGetAdminNotFound(t *testing.T) {
	svc, _ := newTestAuth()
	if _, err := svc.GetAdmin(context.Background(), 42); !errors.Is(err, ErrAdminNotFound) {
		t.Fatalf("err = %v, want ErrAdminNotFound", err)
	}
}
