package repository

import (
	"avdb-go/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID 根据 ID 获取用户
func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUserName 根据用户名获取用户
func (r *UserRepository) GetByUserName(userName string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("user_name = ?", userName).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Create 创建用户
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// ExistsByUserName 检查用户名是否已占用
func (r *UserRepository) ExistsByUserName(userName string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("user_name = ?", userName).Count(&count).Error
	return count > 0, err
}
