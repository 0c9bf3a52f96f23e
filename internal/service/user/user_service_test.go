package service

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "filesafe/internal/errors"
	"filesafe/internal/database"
	"filesafe/internal/logger"
	"filesafe/internal/repository"
	"filesafe/internal/security"
)

func TestMain(m *testing.M) {
	_ = logger.Init(&logger.Config{Level: "error", Output: "console"})
	os.Exit(m.Run())
}

// setupUserService 构造基于内存数据库的用户服务
func setupUserService(t *testing.T) (UserService, *security.TokenService) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.User{}, &database.File{}))

	tokens, err := security.NewTokenService("test-secret", "HS256")
	require.NoError(t, err)

	svc := NewUserService(repository.NewUserRepository(db), security.NewPasswordHasher(), tokens, 30*time.Minute)
	return svc, tokens
}

// TestUserServiceRegister 测试用户注册
func TestUserServiceRegister(t *testing.T) {
	svc, _ := setupUserService(t)

	t.Run("注册新用户", func(t *testing.T) {
		user, err := svc.Register("alice", "pw1")
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		// 明文密码绝不落库
		assert.NotEqual(t, "pw1", user.PasswordHash)
		assert.NotEmpty(t, user.PasswordHash)
	})

	t.Run("重复用户名返回用户名已存在", func(t *testing.T) {
		_, err := svc.Register("alice", "another-pw")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrUsernameTaken))
	})

	t.Run("冲突后原用户凭证不变", func(t *testing.T) {
		token, err := svc.Login("alice", "pw1")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
	})
}

// TestUserServiceLogin 测试用户登录
func TestUserServiceLogin(t *testing.T) {
	svc, tokens := setupUserService(t)

	_, err := svc.Register("bob", "secret-pw")
	require.NoError(t, err)

	t.Run("正确凭证签发令牌", func(t *testing.T) {
		token, err := svc.Login("bob", "secret-pw")
		require.NoError(t, err)

		subject, err := tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "bob", subject)
	})

	t.Run("密码错误返回凭证无效", func(t *testing.T) {
		_, err := svc.Login("bob", "wrong-pw")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidCredentials))
	})

	t.Run("用户不存在与密码错误表现一致", func(t *testing.T) {
		_, errUnknown := svc.Login("nobody", "whatever")
		require.Error(t, errUnknown)
		assert.True(t, apperrors.IsCode(errUnknown, apperrors.ErrInvalidCredentials))

		_, errWrongPw := svc.Login("bob", "wrong-pw")
		require.Error(t, errWrongPw)
		assert.Equal(t, errUnknown.Error(), errWrongPw.Error())
	})
}
