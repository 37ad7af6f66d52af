package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/JoeSaf/Allika-sub000/internal/api/middleware"
	"github.com/JoeSaf/Allika-sub000/internal/dto"
	"github.com/JoeSaf/Allika-sub000/pkg/jwt"
	"github.com/JoeSaf/Allika-sub000/pkg/redis"
)

type authDeps struct {
	jwtMgr *jwt.Manager
	rdb    *redis.Client
}

func setupTestAuthService(t *testing.T) (*testEnv, AuthService) {
	env, svc, _ := setupAuthWithDeps(t)
	return env, svc
}

func setupAuthWithDeps(t *testing.T) (*testEnv, AuthService, authDeps) {
	t.Helper()
	mr := miniredis.RunT(t)
	env := newTestEnv()
	deps := authDeps{
		jwtMgr: jwt.NewManager(&env.cfg.Auth),
		rdb:    redis.Wrap(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), env.logger),
	}
	return env, NewAuthService(env.cfg, env.repo, deps.jwtMgr, deps.rdb, env.logger), deps
}

// bearerStatus runs token through JWTAuth and returns the HTTP status.
func bearerStatus(deps authDeps, token string) int {
	r := gin.New()
	r.GET("/me", middleware.JWTAuth(deps.jwtMgr, deps.rdb, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func accessOf(t *testing.T, deps authDeps, token string) AccessToken {
	t.Helper()
	claims, err := deps.jwtMgr.ParseToken(token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	return AccessToken{JTI: claims.ID, ExpiresAt: claims.ExpiresAt.Time}
}

func registerTestUser(t *testing.T, svc AuthService) *dto.TokenResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Neema", Email: "neema@example.com", Password: "secret123", Phone: "0712000000",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	_, svc := setupTestAuthService(t)
	reg := registerTestUser(t, svc)

	if reg.AccessToken == "" || reg.RefreshToken == "" || reg.ExpiresIn != 3600 {
		t.Errorf("unexpected token response: %+v", reg)
	}
	if reg.User.Phone != "+255712000000" {
		t.Errorf("phone = %q", reg.User.Phone)
	}

	login, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "neema@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Errorf("login user = %s, want %s", login.User.ID, reg.User.ID)
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	_, svc := setupTestAuthService(t)
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Name: "Other", Email: "neema@example.com", Password: "secret123"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, svc := setupTestAuthService(t)
	registerTestUser(t, svc)
	ctx := context.Background()

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "neema@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	_, svc := setupTestAuthService(t)
	reg := registerTestUser(t, svc)
	ctx := context.Background()

	next, err := svc.Refresh(ctx, reg.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if next.RefreshToken == reg.RefreshToken {
		t.Error("refresh token was not rotated")
	}
	if _, err := svc.Refresh(ctx, reg.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reused refresh token: expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Refresh(ctx, next.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token as refresh: expected ErrInvalidToken, got %v", err)
	}
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	_, svc, deps := setupAuthWithDeps(t)
	reg := registerTestUser(t, svc)
	ctx := context.Background()
	access := accessOf(t, deps, reg.AccessToken)

	if err := svc.Logout(ctx, reg.User.ID, access, reg.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.Refresh(ctx, reg.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken after logout, got %v", err)
	}
	// idempotent
	if err := svc.Logout(ctx, reg.User.ID, access, reg.RefreshToken); err != nil {
		t.Errorf("second Logout returned %v", err)
	}
	if err := svc.Logout(ctx, reg.User.ID, access, "garbage"); err != nil {
		t.Errorf("Logout with garbage returned %v", err)
	}
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	_, svc, deps := setupAuthWithDeps(t)
	reg := registerTestUser(t, svc)

	if code := bearerStatus(deps, reg.AccessToken); code != http.StatusOK {
		t.Fatalf("access token rejected before logout: %d", code)
	}
	if err := svc.Logout(context.Background(), reg.User.ID, accessOf(t, deps, reg.AccessToken), ""); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if code := bearerStatus(deps, reg.AccessToken); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a logged-out access token, got %d", code)
	}
}

func TestLogout_ForeignRefreshToken(t *testing.T) {
	_, svc, deps := setupAuthWithDeps(t)
	victim := registerTestUser(t, svc)
	caller, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Name: "Baraka", Email: "baraka@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	ctx := context.Background()

	err = svc.Logout(ctx, caller.User.ID, accessOf(t, deps, caller.AccessToken), victim.RefreshToken)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Refresh(ctx, victim.RefreshToken); err != nil {
		t.Errorf("victim's refresh token was revoked: %v", err)
	}
	if code := bearerStatus(deps, caller.AccessToken); code != http.StatusOK {
		t.Errorf("rejected logout must not revoke the caller's token, got %d", code)
	}
}

func TestMe(t *testing.T) {
	env, svc := setupTestAuthService(t)
	reg := registerTestUser(t, svc)
	env.seedEvent(reg.User.ID, "draft")
	env.seedEvent(reg.User.ID, "active")

	me, err := svc.Me(context.Background(), reg.User.ID)
	if err != nil {
		t.Fatalf("Me failed: %v", err)
	}
	if me.EventCount != 2 || me.Email != "neema@example.com" {
		t.Errorf("unexpected profile: %+v", me)
	}
	if _, err := svc.Me(context.Background(), testOtherID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	_, svc := setupTestAuthService(t)
	reg := registerTestUser(t, svc)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, reg.User.ID, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := svc.ChangePassword(ctx, reg.User.ID, &dto.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"}); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "neema@example.com", Password: "newsecret"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}
