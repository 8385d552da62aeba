// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"

	"github.com/elsendo/elsendo-server/internal/domain"
	"github.com/elsendo/elsendo-server/internal/dto"
	"github.com/elsendo/elsendo-server/pkg/app"
	"github.com/elsendo/elsendo-server/pkg/code"
	"github.com/elsendo/elsendo-server/pkg/util"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService defines the user business service interface
// UserService 定义用户业务服务接口
type UserService interface {
	// Register 用户注册
	Register(ctx context.Context, params *dto.UserCreateRequest, clientIP string) (*dto.UserDTO, error)

	// Login 用户登录
	Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error)

	// ChangePassword 修改密码
	ChangePassword(ctx context.Context, uid int64, params *dto.UserChangePasswordRequest) error

	// GetInfo 获取用户信息
	GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error)
}

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenManager app.TokenManager
	logger       *zap.Logger
	config       *ServiceConfig
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenManager app.TokenManager, logger *zap.Logger, config *ServiceConfig) UserService {
	return &userService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
		config:       config,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *userService) domainToDTO(user *domain.User) *dto.UserDTO {
	if user == nil {
		return nil
	}
	return &dto.UserDTO{
		UID:       user.UID,
		Email:     user.Email,
		Username:  user.Username,
		UpdatedAt: user.UpdatedAt,
		CreatedAt: user.CreatedAt,
	}
}

// Register 用户注册
func (s *userService) Register(ctx context.Context, params *dto.UserCreateRequest, clientIP string) (*dto.UserDTO, error) {
	// 检查注册是否启用
	if s.config == nil || !s.config.User.RegisterIsEnable {
		return nil, code.ErrorUserRegisterDisabled
	}

	// 检查邮箱是否已存在
	emailUser, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	if emailUser != nil {
		return nil, code.ErrorUserEmailExists
	}

	// 生成密码哈希
	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Email:    params.Email,
		Username: params.Username,
		Password: password,
	})
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.logger.Info("user registered",
		zap.Int64("uid", user.UID),
		zap.String("email", user.Email))

	result := s.domainToDTO(user)
	result.Token, err = s.tokenManager.Generate(user.UID, user.Email, clientIP)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return result, nil
}

// Login 用户登录，邮箱加密码换取 Token
func (s *userService) Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorUserNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}

	if !util.CheckPasswordHash(params.Password, user.Password) {
		return nil, code.ErrorUserPasswordWrong
	}

	result := s.domainToDTO(user)
	result.Token, err = s.tokenManager.Generate(user.UID, user.Email, clientIP)
	if err != nil {
		return nil, code.ErrorServerInternal.WithDetails(err.Error())
	}
	return result, nil
}

// ChangePassword 修改密码
func (s *userService) ChangePassword(ctx context.Context, uid int64, params *dto.UserChangePasswordRequest) error {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorUserNotFound
		}
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	if !util.CheckPasswordHash(params.OldPassword, user.Password) {
		return code.ErrorUserPasswordWrong
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return code.ErrorServerInternal.WithDetails(err.Error())
	}

	if err := s.userRepo.UpdatePassword(ctx, uid, password); err != nil {
		return code.ErrorDBQuery.WithDetails(err.Error())
	}

	s.logger.Info("user password changed", zap.Int64("uid", uid))
	return nil
}

// GetInfo 获取用户信息
func (s *userService) GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorUserNotFound
		}
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	return s.domainToDTO(user), nil
}
