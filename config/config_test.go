package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadDefaults 测试无配置文件时的默认值
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "./safe_uploads", cfg.File.StoragePath)
	assert.Equal(t, int64(100*1024*1024), cfg.File.MaxFileSize)
	assert.Equal(t, []string{"*"}, cfg.File.AllowedExtensions)
	assert.Equal(t, "HS256", cfg.Auth.Algorithm)
	assert.Equal(t, 30, cfg.Auth.TokenExpireMinutes)
}

// TestLoadEnvOverride 测试环境变量覆盖
func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("FILESAFE_SERVER_PORT", "9090")
	t.Setenv("FILESAFE_AUTH_SECRET_KEY", "env-secret")
	t.Setenv("FILESAFE_FILE_STORAGE_PATH", "/data/uploads")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Auth.SecretKey)
	assert.Equal(t, "/data/uploads", cfg.File.StoragePath)
}

// TestValidate 测试配置校验
func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Auth: AuthConfig{
				SecretKey:          "secret",
				Algorithm:          "HS256",
				TokenExpireMinutes: 30,
			},
			File: FileConfig{StoragePath: "./uploads"},
		}
	}

	t.Run("合法配置通过", func(t *testing.T) {
		assert.NoError(t, validate(valid()))
	})

	t.Run("空密钥被拒绝", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.SecretKey = ""
		assert.Error(t, validate(cfg))
	})

	t.Run("非HMAC算法被拒绝", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.Algorithm = "RS256"
		assert.Error(t, validate(cfg))
	})

	t.Run("非正的令牌有效期被拒绝", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.TokenExpireMinutes = 0
		assert.Error(t, validate(cfg))
	})

	t.Run("空存储路径被拒绝", func(t *testing.T) {
		cfg := valid()
		cfg.File.StoragePath = ""
		assert.Error(t, validate(cfg))
	})

	t.Run("启用HTTPS但缺少证书被拒绝", func(t *testing.T) {
		cfg := valid()
		cfg.Server.EnableHTTPS = true
		assert.Error(t, validate(cfg))
	})
}
