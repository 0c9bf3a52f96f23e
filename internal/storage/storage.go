// Package storage 提供本地磁盘的文件内容存取能力
// 存储路径由随机生成的唯一标识加原始扩展名派生，
// 用户提供的文件名绝不参与路径构造，避免路径穿越和重名冲突
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"filesafe/internal/logger"
)

// ErrBlobNotExist 磁盘文件不存在
// 读取时表示一致性故障，删除时属于可容忍的告警场景
var ErrBlobNotExist = errors.New("blob does not exist")

// StoredBlob 落盘结果
type StoredBlob struct {
	// UniqueID 新生成的对外唯一标识
	UniqueID string
	// Path 磁盘存储路径
	Path string
	// Size 写入的字节数
	Size int64
}

// Gateway 文件存储网关接口
type Gateway interface {
	// Store 将数据流完整写入磁盘
	// 为数据生成全新的唯一标识，路径为 存储根目录/<unique_id><原始扩展名>；
	// 写入完整成功后才返回，失败时不留下可被元数据引用的文件
	// 参数:
	//   - originalFilename: 用户上传的原始文件名，仅用于提取扩展名
	//   - data: 文件数据流
	Store(originalFilename string, data io.Reader) (*StoredBlob, error)

	// Open 打开指定路径的磁盘文件供读取
	// 文件不存在时返回ErrBlobNotExist，调用者负责关闭返回的读取器
	Open(path string) (io.ReadCloser, error)

	// Remove 删除指定路径的磁盘文件
	// 文件不存在时返回ErrBlobNotExist，由调用者决定是否容忍
	Remove(path string) error

	// Root 返回存储根目录
	Root() string
}

// gateway 文件存储网关实现
type gateway struct {
	root string
}

// NewGateway 创建文件存储网关实例
// 存储根目录不存在时自动创建
func NewGateway(root string) (Gateway, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	logger.Infof("文件存储网关初始化完成，存储目录: %s", root)
	return &gateway{root: root}, nil
}

// Store 将数据流完整写入磁盘
func (g *gateway) Store(originalFilename string, data io.Reader) (*StoredBlob, error) {
	uniqueID := uuid.New().String()
	ext := filepath.Ext(originalFilename)
	storedPath := filepath.Join(g.root, uniqueID+ext)

	// 先写入临时文件，写满后再移动到最终位置，
	// 避免中途失败留下半截文件占用最终路径
	tempFile, err := os.CreateTemp(g.root, "upload_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tempName := tempFile.Name()
	defer os.Remove(tempName)

	size, err := io.Copy(tempFile, data)
	if err != nil {
		tempFile.Close()
		return nil, fmt.Errorf("failed to write file data: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempName, storedPath); err != nil {
		return nil, fmt.Errorf("failed to move file to storage: %w", err)
	}

	logger.Debugf("文件写入完成: %s (%d bytes)", storedPath, size)
	return &StoredBlob{
		UniqueID: uniqueID,
		Path:     storedPath,
		Size:     size,
	}, nil
}

// Open 打开指定路径的磁盘文件供读取
func (g *gateway) Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotExist
		}
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	return file, nil
}

// Remove 删除指定路径的磁盘文件
func (g *gateway) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBlobNotExist
		}
		return fmt.Errorf("failed to remove file %s: %w", path, err)
	}
	return nil
}

// Root 返回存储根目录
func (g *gateway) Root() string {
	return g.root
}
