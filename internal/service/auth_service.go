package service

import (
	"campus_portal_backend/internal/config"
	"campus_portal_backend/internal/model"
	"campus_portal_backend/internal/repository"
	"campus_portal_backend/internal/util"
	"campus_portal_backend/pkg/logger"
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

type AuthService struct {
	UserRepo repository.UserStore
	Sessions SessionStore
	Cfg      *config.Config
}

func NewAuthService(userRepo repository.UserStore, sessions SessionStore, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Sessions: sessions,
		Cfg:      cfg,
	}
}

// Register 只允许注册学生和教师，注册成功后直接登录并保存会话快照
func (s *AuthService) Register(ctx context.Context, role model.UserRole, in RegisterInput) (*LoginResult, error) {
	if role == "" {
		role = model.Student
	}
	if role != model.Student && role != model.Teacher {
		return nil, util.Invalid("role", "must be student or teacher")
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := util.Validate(in); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.Info("User registered", zap.Uint("userId", user.ID), zap.String("role", string(role)))
	return s.issue(ctx, user, true)
}

func (s *AuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*LoginResult, error) {
	user, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, util.ErrNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	return s.issue(ctx, user, rememberMe)
}

func (s *AuthService) issue(ctx context.Context, user *model.User, remember bool) (*LoginResult, error) {
	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	if remember && s.Sessions != nil {
		if err := s.Sessions.Save(ctx, *user, s.Cfg.Session.TTL); err != nil {
			// 会话快照只用于“记住我”，写入失败不影响登录
			logger.Log.Warn("Failed to save session snapshot", zap.Uint("userId", user.ID), zap.Error(err))
		}
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: time.Now().Add(s.Cfg.JWT.ExpireTime),
		User:      user.Public(),
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if userID == 0 {
		return util.ErrUnauthenticated
	}
	if s.Sessions == nil {
		return nil
	}
	return s.Sessions.Delete(ctx, userID)
}

// RestoreSession 读取“记住我”保存的用户快照
func (s *AuthService) RestoreSession(ctx context.Context, userID uint) (*model.User, error) {
	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}
	if s.Sessions == nil {
		return nil, util.ErrNotFound
	}
	return s.Sessions.Load(ctx, userID)
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID uint) (*model.User, error) {
	if userID == 0 {
		return nil, util.ErrUnauthenticated
	}
	user, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}
