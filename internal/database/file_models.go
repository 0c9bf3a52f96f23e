// Package database 定义了文件相关的数据库模型
package database

import (
	"time"

	"gorm.io/gorm"
)

// File 文件元数据模型
// 每条存活记录必须对应StoredPath处的一个磁盘文件，
// 记录存在而磁盘文件缺失属于服务端一致性故障
type File struct {
	ID               uint           `gorm:"primarykey" json:"id"`                           // 主键ID，自增
	UniqueID         string         `gorm:"uniqueIndex;not null;size:36" json:"unique_id"`  // 对外唯一标识符（UUID格式），与主键和存储路径解耦
	OriginalFilename string         `gorm:"not null;size:255" json:"original_filename"`     // 原始文件名，仅用于下载时的展示名，不参与存储路径构造
	StoredPath       string         `gorm:"not null;size:500" json:"-"`                     // 磁盘存储路径，由UniqueID加原始扩展名派生
	MimeType         string         `gorm:"size:128" json:"mime_type"`                      // 客户端声明的MIME类型，可为空
	FileSize         int64          `gorm:"not null" json:"file_size"`                      // 文件大小，单位为字节
	CreatedAt        time.Time      `json:"created_at"`                                     // 记录创建时间
	UploaderID       uint           `gorm:"not null;index" json:"uploader_id"`              // 上传者ID，外键关联users.id，所有权不可转移
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                 // 软删除时间戳
}

// TableName 指定File模型对应的数据库表名
func (File) TableName() string {
	return "files"
}
