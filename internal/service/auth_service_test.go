package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"eco-award/backend/config"
	"eco-award/backend/internal/dto"
	"eco-award/backend/internal/model"
	"eco-award/backend/internal/repository"
	"eco-award/backend/pkg/jwt"
)

func newTestAuthService(t *testing.T, repo *repository.Repository) AuthService {
	t.Helper()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:              "test-secret-0123456789",
			AccessTokenTTL:         15 * time.Minute,
			RefreshTokenTTLDefault: 168 * time.Hour,
		},
	}
	return NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())
}

func seedUser(t *testing.T, repo *repository.Repository, email, password, role string, schoolID *string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	user := &model.User{
		Name:         "测试用户",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		SchoolID:     schoolID,
	}
	if err := repo.User.Create(context.Background(), user); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return user
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockRepository()
	svc := newTestAuthService(t, repo)
	schoolID := "school-0001"
	seedUser(t, repo, "teacher@example.com", "password123", model.RoleTeacher, &schoolID)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录应返回 Token 对")
	}
	if resp.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Errorf("expires_in 错误，实际=%d", resp.ExpiresIn)
	}
	if resp.User.Role != model.RoleTeacher || resp.User.SchoolID != schoolID {
		t.Errorf("用户信息错误：%+v", resp.User)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newMockRepository()
	svc := newTestAuthService(t, repo)
	seedUser(t, repo, "teacher@example.com", "password123", model.RoleTeacher, nil)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("密码错误应返回 ErrInvalidCredentials，实际=%v", err)
	}

	// 用户不存在返回相同错误，不暴露注册信息
	_, err = svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("用户不存在也应返回 ErrInvalidCredentials，实际=%v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newMockRepository()
	svc := newTestAuthService(t, repo)
	seedUser(t, repo, "reviewer@example.com", "password123", model.RoleReviewer, nil)

	login, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "reviewer@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("登录失败: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), &dto.RefreshRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("刷新失败: %v", err)
	}
	if resp.AccessToken == "" {
		t.Error("刷新应返回新的 Access Token")
	}

	// Access Token 不能用于刷新
	_, err = svc.Refresh(context.Background(), &dto.RefreshRequest{
		RefreshToken: login.AccessToken,
	})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Access Token 刷新应返回 ErrInvalidToken，实际=%v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newMockRepository()
	svc := newTestAuthService(t, repo)
	user := seedUser(t, repo, "teacher@example.com", "oldpassword", model.RoleTeacher, nil)

	if err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpassword1",
	}); !errors.Is(err, ErrWrongOldPassword) {
		t.Errorf("原密码错误应返回 ErrWrongOldPassword，实际=%v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.UserID, &dto.ChangePasswordRequest{
		OldPassword: "oldpassword",
		NewPassword: "newpassword1",
	}); err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}

	// 新密码可登录
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "newpassword1",
	}); err != nil {
		t.Errorf("新密码登录失败: %v", err)
	}
	// 旧密码失效
	if _, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "teacher@example.com",
		Password: "oldpassword",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("旧密码应失效，实际=%v", err)
	}
}

func TestAuthService_GetProfile_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newTestAuthService(t, repo)

	_, err := svc.GetProfile(context.Background(), "no-such-user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}
