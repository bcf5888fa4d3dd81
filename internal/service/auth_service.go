package service

import (
	"cbda_exam_backend/internal/model"
	"cbda_exam_backend/internal/repository"
	"cbda_exam_backend/internal/util"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	UserRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{UserRepo: userRepo}
}

// Register 注册新用户，默认角色 student。邮箱重复返回 ErrEmailRegistered。
func (s *AuthService) Register(name, email, password string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  string(hashedPassword),
		Role:      model.Student,
		CreatedAt: time.Now(),
		Verified:  false,
	}

	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Login 无状态凭据校验：没有会话也没有令牌，成功只返回脱敏后的用户记录
func (s *AuthService) Login(email, password string) (*model.User, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

func (s *AuthService) ChangeEmail(userID, newEmail string) error {
	return s.UserRepo.UpdateEmail(userID, newEmail)
}

// ListUsers 管理端用户列表，密码哈希已剥离
func (s *AuthService) ListUsers() ([]model.User, error) {
	users, err := s.UserRepo.All()
	if err != nil {
		return nil, err
	}
	sanitized := make([]model.User, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitized()
	}
	return sanitized, nil
}
