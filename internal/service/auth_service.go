package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"rapor-paud/backend/config"
	"rapor-paud/backend/internal/dto"
	"rapor-paud/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("密码错误")
	ErrAuthDisabled       = errors.New("未启用编辑者认证")
	ErrTokenRevoked       = errors.New("token 已注销")
)

// editorSubject 单编辑者模式下令牌的固定主体
const editorSubject = "editor"

// TokenBlacklist 已注销令牌存储（Redis 可用时启用）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Enabled() bool
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	// Verify 解析令牌并检查是否已注销
	Verify(ctx context.Context, token string) (*jwt.Claims, error)
}

type authService struct {
	cfg       *config.AuthConfig
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例，blacklist 可为 nil
func NewAuthService(
	cfg *config.AuthConfig,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Enabled() bool { return s.cfg.Enabled() }

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if !s.cfg.Enabled() {
		return nil, ErrAuthDisabled
	}

	// 1. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.EditorPasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 2. 生成 AccessToken
	accessToken, err := s.jwtMgr.GenerateAccessToken(editorSubject)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtMgr.AccessTokenTTL().Seconds()),
		TokenType:   "Bearer",
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("注销令牌失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) Verify(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := s.jwtMgr.ParseToken(token)
	if err != nil {
		return nil, err
	}
	if s.blacklist != nil && claims.ID != "" {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			// 黑名单不可用时放行，仅记录
			s.logger.Warn("查询令牌黑名单失败", zap.Error(err))
		} else if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}
