// Package config 提供应用程序配置加载功能
// 基于viper实现，支持配置文件和环境变量两种来源
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"filesafe/internal/logger"
)

// Config 应用程序配置结构体
// 启动时一次性加载，加载后不再修改
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	File     FileConfig     `mapstructure:"file"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logger   logger.Config  `mapstructure:"logger"`
}

// ServerConfig HTTP服务器配置
type ServerConfig struct {
	// Port 监听端口
	Port int `mapstructure:"port"`
	// ReadTimeout 读超时（秒）
	ReadTimeout int `mapstructure:"read_timeout"`
	// WriteTimeout 写超时（秒）
	WriteTimeout int `mapstructure:"write_timeout"`
	// EnableHTTPS 是否启用HTTPS
	EnableHTTPS bool `mapstructure:"enable_https"`
	// EnableHTTP2 是否启用HTTP/2（仅HTTPS模式下生效）
	EnableHTTP2 bool `mapstructure:"enable_http2"`
	// TLSCertFile TLS证书文件路径
	TLSCertFile string `mapstructure:"tls_cert_file"`
	// TLSKeyFile TLS私钥文件路径
	TLSKeyFile string `mapstructure:"tls_key_file"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Driver 数据库驱动，目前仅支持sqlite
	Driver string `mapstructure:"driver"`
	// DSN 数据库连接字符串
	DSN string `mapstructure:"dsn"`
	// MaxIdleConns 最大空闲连接数
	MaxIdleConns int `mapstructure:"max_idle_conns"`
	// MaxOpenConns 最大打开连接数
	MaxOpenConns int `mapstructure:"max_open_conns"`
	// ConnMaxLifetime 连接最大存活时间（秒）
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"`
}

// FileConfig 文件存储配置
type FileConfig struct {
	// StoragePath 文件存储根目录
	StoragePath string `mapstructure:"storage_path"`
	// MaxFileSize 单个文件最大字节数
	MaxFileSize int64 `mapstructure:"max_file_size"`
	// AllowedExtensions 允许的文件扩展名列表，"*"表示不限制
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	// CheckInterval 一致性检查间隔（秒），0表示关闭后台检查
	CheckInterval int `mapstructure:"check_interval"`
}

// AuthConfig 认证配置
type AuthConfig struct {
	// SecretKey 令牌签名密钥，生产环境必须通过环境变量覆盖
	SecretKey string `mapstructure:"secret_key"`
	// Algorithm 令牌签名算法（HS256/HS384/HS512）
	Algorithm string `mapstructure:"algorithm"`
	// TokenExpireMinutes 令牌有效期（分钟）
	TokenExpireMinutes int `mapstructure:"token_expire_minutes"`
}

// Load 加载应用程序配置
// 读取顺序：默认值 -> config.yaml -> FILESAFE_前缀环境变量
// 返回值:
//   - *Config: 配置实例
//   - error: 加载或校验失败时返回错误
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("FILESAFE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在时使用默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 设置各项配置的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 60)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.enable_https", false)
	v.SetDefault("server.enable_http2", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "filesafe.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 3600)

	v.SetDefault("file.storage_path", "./safe_uploads")
	v.SetDefault("file.max_file_size", 100*1024*1024)
	v.SetDefault("file.allowed_extensions", []string{"*"})
	v.SetDefault("file.check_interval", 300)

	v.SetDefault("auth.secret_key", "filesafe-dev-secret-change-in-production")
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.token_expire_minutes", 30)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
	v.SetDefault("logger.output", "both")
	v.SetDefault("logger.file_path", "logs/filesafe.log")
}

// validate 校验配置合法性
func validate(cfg *Config) error {
	if cfg.Auth.SecretKey == "" {
		return fmt.Errorf("auth.secret_key must not be empty")
	}
	switch cfg.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported auth algorithm: %s", cfg.Auth.Algorithm)
	}
	if cfg.Auth.TokenExpireMinutes <= 0 {
		return fmt.Errorf("auth.token_expire_minutes must be positive")
	}
	if cfg.File.StoragePath == "" {
		return fmt.Errorf("file.storage_path must not be empty")
	}
	if cfg.Server.EnableHTTPS && (cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "") {
		return fmt.Errorf("https enabled but tls_cert_file/tls_key_file not configured")
	}
	return nil
}
