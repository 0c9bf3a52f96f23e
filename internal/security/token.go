package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken 令牌无效
// 格式错误、签名不匹配、已过期、缺少主体等所有失败场景统一收敛到该错误，
// 调用方无法区分具体原因
var ErrInvalidToken = errors.New("invalid token")

// TokenService 访问令牌服务
// 签发和校验无状态的签名令牌，有效性仅取决于签名、过期时间和当前时钟，
// 服务端不保存任何会话状态
type TokenService struct {
	secretKey []byte
	method    jwt.SigningMethod
}

// NewTokenService 创建令牌服务实例
// 参数:
//   - secretKey: 签名密钥
//   - algorithm: 签名算法名称，仅支持HMAC族（HS256/HS384/HS512）
//
// 返回值:
//   - *TokenService: 令牌服务实例
//   - error: 算法不支持时返回错误
func NewTokenService(secretKey string, algorithm string) (*TokenService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm: %s", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
	return &TokenService{
		secretKey: []byte(secretKey),
		method:    method,
	}, nil
}

// Issue 签发令牌
// 令牌仅携带主体和过期时间两个声明
// 参数:
//   - subject: 令牌主体（用户名）
//   - ttl: 有效期
//
// 返回值:
//   - string: 签名后的令牌
//   - error: 签名失败时返回错误
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secretKey)
}

// Verify 校验令牌并返回主体
// 过期判断以校验时刻的UTC墙上时钟为准，无宽限窗口
// 返回值:
//   - string: 令牌主体
//   - error: 任何校验失败均返回ErrInvalidToken
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
