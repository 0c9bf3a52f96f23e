// Package security 提供密码哈希和访问令牌相关的安全能力
package security

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost bcrypt默认计算成本
// 成本12在安全性和单次哈希耗时之间取得平衡
const DefaultBcryptCost = 12

// PasswordHasher 密码哈希器
// 同一明文每次哈希结果不同（内嵌随机盐），比较只能通过Verify进行
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher 创建密码哈希器实例，使用默认成本
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		cost: DefaultBcryptCost,
	}
}

// Hash 对明文密码做bcrypt哈希
// 返回值:
//   - string: 哈希结果
//   - error: 哈希失败时返回错误
func (h *PasswordHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify 校验明文密码与哈希是否匹配
// 哈希格式非法时同样返回false，不会抛出错误
func (h *PasswordHasher) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
