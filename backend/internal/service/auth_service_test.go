package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hadassah627/road-repair-and-tracking-system/backend/config"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/dto"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/internal/model"
	"github.com/Hadassah627/road-repair-and-tracking-system/backend/pkg/jwt"
)

// ── 测试辅助 ──

type memTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{revoked: make(map[string]time.Duration)}
}

func (s *memTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = ttl
	return nil
}

func (s *memTokenStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[jti]
	return ok, nil
}

func setupTestAuthService() (AuthService, *jwt.Manager, *memTokenStore, *mockRepos) {
	cfg := &config.Config{Auth: config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}}
	repo, mocks := newMockRepos()
	mgr := jwt.NewManager(&cfg.Auth)
	store := newMemTokenStore()
	return NewAuthService(cfg, repo, mgr, store, zap.NewNop()), mgr, store, mocks
}

func registerUser(t *testing.T, svc AuthService, email, role string) *dto.TokenResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "测试用户", Email: email, Password: "secret123", Role: role,
	})
	if err != nil {
		t.Fatalf("Register 应成功: %v", err)
	}
	return resp
}

// ── 测试用例 ──

func TestAuthService_Register(t *testing.T) {
	svc, mgr, _, mocks := setupTestAuthService()

	resp := registerUser(t, svc, " Alice@Road.Test ", "")
	if resp.User.Role != model.RoleResident {
		t.Errorf("默认角色应为 resident，实际=%s", resp.User.Role)
	}
	if resp.User.Email != "alice@road.test" {
		t.Errorf("邮箱应规范化为小写，实际=%s", resp.User.Email)
	}
	if resp.ExpiresIn != int((30 * time.Minute).Seconds()) {
		t.Errorf("ExpiresIn 不符: %d", resp.ExpiresIn)
	}

	claims, err := mgr.ParseToken(resp.AccessToken)
	if err != nil || claims.UserID != resp.User.ID || claims.TokenType != "access" {
		t.Errorf("AccessToken 声明不符: %+v, %v", claims, err)
	}
	stored := mocks.users.users[resp.User.ID]
	if stored.PasswordHash == "secret123" || bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")) != nil {
		t.Error("密码应以 bcrypt 哈希存储")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()
	registerUser(t, svc, "bob@road.test", model.RoleClerk)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Bob", Email: "BOB@road.test", Password: "secret123",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestAuthService_Register_InvalidRole(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "X", Email: "x@road.test", Password: "secret123", Role: "superuser",
	})
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("期望 ErrInvalidRole，实际: %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()
	registerUser(t, svc, "carol@road.test", model.RoleSupervisor)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "Carol@road.test", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.User.Role != model.RoleSupervisor {
		t.Errorf("期望角色 supervisor，实际=%s", resp.User.Role)
	}

	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "carol@road.test", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误期望 ErrInvalidCredentials，实际: %v", err)
	}
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "nobody@road.test", Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用户不存在期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	svc, mgr, store, _ := setupTestAuthService()
	first := registerUser(t, svc, "dave@road.test", model.RoleSupport)

	second, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if second.AccessToken == "" || second.RefreshToken == first.RefreshToken {
		t.Error("应签发新的 Token 对")
	}

	old, _ := mgr.ParseToken(first.RefreshToken)
	if ttl, ok := store.revoked[old.ID]; !ok || ttl <= 0 {
		t.Error("旧 RefreshToken 应加入黑名单")
	}
	if _, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: first.RefreshToken}); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("重复使用旧 RefreshToken 期望 ErrTokenRevoked，实际: %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()
	resp := registerUser(t, svc, "erin@road.test", "")

	for _, tok := range []string{resp.AccessToken, "not-a-token"} {
		if _, err := svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: tok}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
		}
	}
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, store, _ := setupTestAuthService()

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if revoked, _ := store.IsBlacklisted(context.Background(), "jti-1"); !revoked {
		t.Error("注销后 jti 应进入黑名单")
	}
	if err := svc.Logout(context.Background(), "jti-2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("已过期 Token 注销应直接成功: %v", err)
	}
	if revoked, _ := store.IsBlacklisted(context.Background(), "jti-2"); revoked {
		t.Error("已过期 Token 无需写入黑名单")
	}
}

func TestAuthService_Logout_NoStore(t *testing.T) {
	repo, _ := newMockRepos()
	cfg := &config.Config{Auth: config.AuthConfig{JWTSecret: "k", AccessTokenTTL: time.Minute}}
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())

	if err := svc.Logout(context.Background(), "jti", time.Now().Add(time.Minute)); err != nil {
		t.Errorf("无黑名单存储时注销应静默成功: %v", err)
	}
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _, mocks := setupTestAuthService()
	mocks.addUser("u-1", "张三", model.RoleMayor)

	got, err := svc.Me(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if got.Name != "张三" || got.Role != model.RoleMayor {
		t.Errorf("用户信息不符: %+v", got)
	}
	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestAuthService_ListSupportPersons(t *testing.T) {
	svc, _, _, mocks := setupTestAuthService()
	mocks.addUser("u-s1", "李四", model.RoleSupport)
	mocks.addUser("u-s2", "王五", model.RoleSupport)
	mocks.addUser("u-r1", "赵六", model.RoleResident)

	got, err := svc.ListSupportPersons(context.Background(), supervisor)
	if err != nil {
		t.Fatalf("ListSupportPersons 应成功: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("期望2名维修人员，实际=%d", len(got))
	}
	if _, err := svc.ListSupportPersons(context.Background(), resident); !errors.Is(err, ErrForbidden) {
		t.Errorf("期望 ErrForbidden，实际: %v", err)
	}
}
