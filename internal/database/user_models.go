// Package database 定义了用户相关的数据库模型
package database

import (
	"time"
)

// User 用户模型
// 注册时创建，创建后用户名不再变更，密码仅以哈希形式保存
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`                           // 主键ID，自增
	Username     string    `gorm:"uniqueIndex;not null;size:64" json:"username"`   // 用户名，全局唯一
	PasswordHash string    `gorm:"not null;size:128" json:"-"`                     // 密码哈希，明文密码绝不落库
	CreatedAt    time.Time `json:"created_at"`                                     // 记录创建时间
	Files        []File    `gorm:"foreignKey:UploaderID" json:"files,omitempty"`   // 用户上传的文件列表
}

// TableName 指定User模型对应的数据库表名
func (User) TableName() string {
	return "users"
}
