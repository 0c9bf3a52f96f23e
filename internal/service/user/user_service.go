// Package service 提供用户注册和登录的业务逻辑
package service

import (
	"time"

	apperrors "filesafe/internal/errors"
	"filesafe/internal/database"
	"filesafe/internal/logger"
	"filesafe/internal/repository"
	"filesafe/internal/security"
)

// UserService 用户服务接口
type UserService interface {
	// Register 注册新用户
	// 参数:
	//   - username: 用户名
	//   - password: 明文密码，仅以bcrypt哈希形式落库
	// 返回:
	//   - *database.User: 创建的用户记录
	//   - error: 用户名已存在时返回ErrUsernameTaken错误码
	Register(username, password string) (*database.User, error)

	// Login 用户登录
	// 用户不存在和密码错误对外表现为同一种失败，不泄露具体原因
	// 返回:
	//   - string: 签发的访问令牌
	//   - error: 凭证无效时返回ErrInvalidCredentials错误码
	Login(username, password string) (string, error)
}

// userService 用户服务实现
type userService struct {
	users    repository.UserRepository
	hasher   *security.PasswordHasher
	tokens   *security.TokenService
	tokenTTL time.Duration
}

// NewUserService 创建用户服务实例
func NewUserService(users repository.UserRepository, hasher *security.PasswordHasher, tokens *security.TokenService, tokenTTL time.Duration) UserService {
	return &userService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
}

// Register 注册新用户
func (s *userService) Register(username, password string) (*database.User, error) {
	logger.Infof("注册尝试：用户名 '%s'", username)

	// 先查一次给出友好的冲突错误，真正的唯一性由数据库唯一索引兜底
	if _, err := s.users.FindByUsername(username); err == nil {
		logger.Warnf("注册失败：用户名 '%s' 已存在", username)
		return nil, apperrors.NewByCode(apperrors.ErrUsernameTaken)
	} else if !apperrors.IsCode(err, apperrors.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		logger.Errorf("密码哈希失败 (用户名: '%s'): %v", username, err)
		return nil, apperrors.WrapByCode(apperrors.ErrRegisterFailed, err)
	}

	user, err := s.users.Create(username, passwordHash)
	if err != nil {
		// 并发注册同名用户时唯一索引冲突在这里出现
		if apperrors.IsCode(err, apperrors.ErrRecordAlreadyExists) {
			logger.Warnf("注册失败：用户名 '%s' 已存在（唯一索引冲突）", username)
			return nil, apperrors.NewByCode(apperrors.ErrUsernameTaken)
		}
		logger.Errorf("创建用户记录失败 (用户名: '%s'): %v", username, err)
		return nil, err
	}

	logger.Infof("新用户注册成功：'%s' (ID: %d)", user.Username, user.ID)
	return user, nil
}

// Login 用户登录
func (s *userService) Login(username, password string) (string, error) {
	logger.Debugf("登录尝试：用户名 '%s'", username)

	user, err := s.users.FindByUsername(username)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrRecordNotFound) {
			logger.Warnf("登录失败：用户名或密码错误 (用户名: '%s')", username)
			return "", apperrors.NewByCode(apperrors.ErrInvalidCredentials)
		}
		return "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		logger.Warnf("登录失败：用户名或密码错误 (用户名: '%s')", username)
		return "", apperrors.NewByCode(apperrors.ErrInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.Username, s.tokenTTL)
	if err != nil {
		logger.Errorf("签发令牌失败 (用户名: '%s'): %v", username, err)
		return "", apperrors.Wrap(apperrors.ErrInternalServer, apperrors.GetErrorMessage(apperrors.ErrInternalServer), err)
	}

	logger.Infof("用户 '%s' 登录成功", user.Username)
	return token, nil
}
