// Package repository 提供用户和文件元数据的持久化访问
// 所有仓库方法将底层gorm错误翻译为带错误码的应用错误
package repository

import (
	stderrors "errors"

	"gorm.io/gorm"

	apperrors "filesafe/internal/errors"
	"filesafe/internal/database"
)

// UserRepository 用户仓库接口
// 核心只暴露查询和创建，用户记录创建后不更新也不删除
type UserRepository interface {
	// FindByUsername 根据用户名查询用户
	// 用户不存在时返回ErrRecordNotFound错误码
	FindByUsername(username string) (*database.User, error)

	// Create 创建用户记录
	// 用户名冲突时返回ErrRecordAlreadyExists错误码，
	// 唯一性由数据库唯一索引保证
	Create(username, passwordHash string) (*database.User, error)
}

// userRepository 用户仓库的gorm实现
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库实例
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUsername 根据用户名查询用户
func (r *userRepository) FindByUsername(username string) (*database.User, error) {
	var user database.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WrapByCode(apperrors.ErrRecordNotFound, err)
		}
		return nil, apperrors.WrapByCode(apperrors.ErrDatabaseQuery, err)
	}
	return &user, nil
}

// Create 创建用户记录
func (r *userRepository) Create(username, passwordHash string) (*database.User, error) {
	user := &database.User{
		Username:     username,
		PasswordHash: passwordHash,
	}
	if err := r.db.Create(user).Error; err != nil {
		if stderrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.WrapByCode(apperrors.ErrRecordAlreadyExists, err)
		}
		return nil, apperrors.WrapByCode(apperrors.ErrDatabaseInsert, err)
	}
	return user, nil
}
