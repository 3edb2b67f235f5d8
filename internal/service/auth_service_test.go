package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/pkg/jwt"
)

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	mu   sync.Mutex
	jtis map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{jtis: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jtis[jti] = ttl
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jtis[jti]
	return ok, nil
}

func setupTestAuthService(t *testing.T, password string) (AuthService, *mockBlacklist) {
	t.Helper()
	cfg := &config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-tests",
		AccessTokenTTL: time.Hour,
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			t.Fatal(err)
		}
		cfg.EditorPasswordHash = string(hash)
	}
	bl := newMockBlacklist()
	return NewAuthService(cfg, jwt.NewManager(cfg), bl, zap.NewNop()), bl
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _ := setupTestAuthService(t, "rahasia123")

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Password: "rahasia123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.TokenType != "Bearer" || resp.ExpiresIn != 3600 {
		t.Errorf("响应不符: %+v", resp)
	}

	claims, err := svc.Verify(context.Background(), resp.AccessToken)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "editor" {
		t.Errorf("期望主体 editor，实际: %q", claims.Subject)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _ := setupTestAuthService(t, "rahasia123")

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Password: "salah"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_Disabled(t *testing.T) {
	svc, _ := setupTestAuthService(t, "")

	if svc.Enabled() {
		t.Fatal("未配置密码哈希时不应启用认证")
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Password: "x"}); !errors.Is(err, ErrAuthDisabled) {
		t.Errorf("期望 ErrAuthDisabled，实际: %v", err)
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, bl := setupTestAuthService(t, "rahasia123")
	ctx := context.Background()

	resp, _ := svc.Login(ctx, &dto.LoginRequest{Password: "rahasia123"})
	claims, err := svc.Verify(ctx, resp.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if ttl := bl.jtis[claims.ID]; ttl <= 0 || ttl > time.Hour {
		t.Errorf("黑名单 TTL 应为剩余有效期，实际: %v", ttl)
	}
	if _, err := svc.Verify(ctx, resp.AccessToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("注销后期望 ErrTokenRevoked，实际: %v", err)
	}
}

func TestAuthService_Verify_InvalidToken(t *testing.T) {
	svc, _ := setupTestAuthService(t, "rahasia123")

	if _, err := svc.Verify(context.Background(), "not-a-token"); !errors.Is(err, jwt.ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
