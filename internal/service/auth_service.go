package service

import (
	"errors"

	"avdb-go/internal/api/dto"
	"avdb-go/internal/model"
	"avdb-go/pkg/utils"

	"gorm.io/gorm"
)

var (
	ErrUserNameTaken      = errors.New("用户名已被占用")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

// UserStore 认证服务依赖的存储接口
type UserStore interface {
	GetByID(id int64) (*model.User, error)
	GetByUserName(userName string) (*model.User, error)
	Create(user *model.User) error
	ExistsByUserName(userName string) (bool, error)
}

type AuthService struct {
	userStore UserStore
}

func NewAuthService(userStore UserStore) *AuthService {
	return &AuthService{userStore: userStore}
}

// Register 注册新用户并签发 Token
func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthData, error) {
	exists, err := s.userStore.ExistsByUserName(req.UserName)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserNameTaken
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserName: req.UserName,
		Password: hashed,
		UserRole: "user",
	}
	if err := s.userStore.Create(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

// Login 校验凭证并签发 Token
// 用户不存在与密码错误返回同一个错误，不泄露账号是否存在
func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthData, error) {
	user, err := s.userStore.GetByUserName(req.UserName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// GetProfile 查询当前用户信息
func (s *AuthService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userStore.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

func (s *AuthService) issueToken(user *model.User) (*dto.AuthData, error) {
	token, err := utils.GenerateToken(user.ID, user.UserName)
	if err != nil {
		return nil, err
	}
	return &dto.AuthData{Token: token, User: toUserInfo(user)}, nil
}

func toUserInfo(user *model.User) dto.UserInfo {
	return dto.UserInfo{
		ID:        user.ID,
		UserName:  user.UserName,
		UserRole:  user.UserRole,
		CreatedAt: user.CreatedAt,
	}
}
