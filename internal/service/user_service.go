// Package service 包含了应用的业务逻辑层。
package service

import (
	"errors"

	"momcare-go/internal/model"
	"momcare-go/internal/repository"
	"momcare-go/pkg/hash"
	"momcare-go/pkg/token"

	"gorm.io/gorm"
)

// TokenPair 是登录/刷新返回的令牌对。
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UserService 接口定义了用户注册、登录与资料查询的业务操作。
type UserService interface {
	Register(username, password string) (*model.User, error)
	Login(username, password string) (*model.User, *TokenPair, error)
	// RefreshToken 校验 refresh token 并签发新的令牌对。
	// 用户信息以数据库为准重新读取，避免沿用过期的角色信息。
	RefreshToken(refreshToken string) (*TokenPair, error)
	GetProfile(userID uint) (*model.User, error)
	ListHospitals() ([]model.Hospital, error)
}

type userService struct {
	userRepo     repository.UserRepository
	hospitalRepo repository.HospitalRepository
	jwtManager   *token.JWTManager
}

// NewUserService 创建一个新的 UserService 实例。
func NewUserService(userRepo repository.UserRepository, hospitalRepo repository.HospitalRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:     userRepo,
		hospitalRepo: hospitalRepo,
		jwtManager:   jwtManager,
	}
}

// Register 注册一个新用户。用户名全局唯一。
func (s *userService) Register(username, password string) (*model.User, error) {
	if username == "" {
		return nil, validationf("用户名不能为空")
	}
	if len(password) < 6 {
		return nil, validationf("密码长度不能少于 6 位")
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, conflictf("用户名已存在: %s", username)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:   username,
		Password:   hashed,
		Role:       "USER",
		MemberType: model.MemberTypeUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验凭证并签发令牌对。
// 用户不存在与密码错误返回同一个错误，不泄露用户名是否注册。
func (s *userService) Login(username, password string) (*model.User, *TokenPair, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, validationf("用户名或密码错误")
		}
		return nil, nil, err
	}
	if !hash.CheckPassword(password, user.Password) {
		return nil, nil, validationf("用户名或密码错误")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken 用 refresh token 换取新的令牌对。
func (s *userService) RefreshToken(refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtManager.VerifyToken(refreshToken)
	if err != nil {
		return nil, forbiddenf("refresh token 无效或已过期")
	}
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, forbiddenf("用户不存在")
		}
		return nil, err
	}
	return s.issueTokens(user)
}

// GetProfile 返回用户资料。
func (s *userService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("用户不存在: %d", userID)
		}
		return nil, err
	}
	return user, nil
}

// ListHospitals 返回所有医院，供注册与管理界面选择。
func (s *userService) ListHospitals() ([]model.Hospital, error) {
	return s.hospitalRepo.FindAll()
}

func (s *userService) issueTokens(user *model.User) (*TokenPair, error) {
	var hospitalID uint
	if user.HospitalID != nil {
		hospitalID = *user.HospitalID
	}
	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role, user.MemberType, hospitalID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Username, user.Role, user.MemberType, hospitalID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
