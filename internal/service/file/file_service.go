// Package service 提供文件管理相关的业务逻辑服务
// 负责编排文件上传、下载、列表和删除，
// 维护元数据记录与磁盘文件之间的一致性语义
package service

import (
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"

	"filesafe/config"
	apperrors "filesafe/internal/errors"
	"filesafe/internal/database"
	"filesafe/internal/logger"
	"filesafe/internal/repository"
	"filesafe/internal/storage"
)

// FileService 文件服务接口
type FileService interface {
	// Upload 上传文件
	// 先完整写入磁盘文件，成功后再创建元数据记录；
	// 写盘失败时不会产生元数据记录，
	// 记录创建失败时磁盘文件成为孤儿（记录日志，不自动回滚）
	// 参数:
	//   - uploaderID: 上传者用户ID
	//   - originalFilename: 原始文件名，原样保存，仅用于下载展示
	//   - mimeType: 客户端声明的MIME类型，可为空
	//   - data: 文件数据流
	Upload(uploaderID uint, originalFilename, mimeType string, data io.Reader) (*database.File, error)

	// GetByUniqueID 根据对外唯一标识查询文件元数据
	// 记录不存在时返回ErrFileNotFound错误码
	GetByUniqueID(uniqueID string) (*database.File, error)

	// Download 根据对外唯一标识获取文件元数据和内容流
	// 记录不存在返回ErrFileNotFound；
	// 记录存在但磁盘文件丢失属于服务端一致性故障，
	// 返回ErrFileMissingOnDisk并记录error级别日志，绝不当作404处理。
	// 此操作不做所有权校验：唯一标识本身即访问凭证
	Download(uniqueID string) (*database.File, io.ReadCloser, error)

	// ListByUploader 查询指定用户的全部文件，按创建时间倒序
	ListByUploader(uploaderID uint) ([]database.File, error)

	// Delete 删除文件
	// 仅文件所有者可删除；先尝试删除磁盘文件再删除记录：
	// 磁盘文件已不存在时记录告警并继续删除记录，
	// 其他磁盘删除错误则中止操作，保持记录与文件成对
	Delete(uniqueID string, requesterID uint) error
}

// fileService 文件服务实现
type fileService struct {
	files   repository.FileRepository
	gateway storage.Gateway
	config  config.FileConfig
}

// NewFileService 创建文件服务实例
func NewFileService(files repository.FileRepository, gateway storage.Gateway, cfg config.FileConfig) FileService {
	return &fileService{
		files:   files,
		gateway: gateway,
		config:  cfg,
	}
}

// Upload 上传文件
func (s *fileService) Upload(uploaderID uint, originalFilename, mimeType string, data io.Reader) (*database.File, error) {
	logger.Infof("用户 (ID: %d) 开始上传文件: '%s' (类型: %s)", uploaderID, originalFilename, mimeType)

	ext := filepath.Ext(originalFilename)
	if !s.isAllowedExtension(ext) {
		logger.Warnf("文件扩展名 '%s' 不允许上传 (文件: '%s')", ext, originalFilename)
		return nil, apperrors.NewByCode(apperrors.ErrFileTypeNotAllowed)
	}

	// 第一步：完整写盘。失败则直接中止，不会产生元数据记录
	blob, err := s.gateway.Store(originalFilename, data)
	if err != nil {
		logger.Errorf("保存文件到磁盘失败 (文件: '%s'): %v", originalFilename, err)
		return nil, apperrors.WrapByCode(apperrors.ErrFileWriteFailed, err)
	}

	if s.config.MaxFileSize > 0 && blob.Size > s.config.MaxFileSize {
		logger.Warnf("文件 '%s' 大小 %d 超过上限 %d，删除已写入的文件", originalFilename, blob.Size, s.config.MaxFileSize)
		if err := s.gateway.Remove(blob.Path); err != nil {
			logger.Errorf("清理超限文件失败: %s: %v", blob.Path, err)
		}
		return nil, apperrors.NewByCode(apperrors.ErrFileSizeTooLarge)
	}

	// 第二步：创建元数据记录
	file := &database.File{
		UniqueID:         blob.UniqueID,
		OriginalFilename: originalFilename,
		StoredPath:       blob.Path,
		MimeType:         mimeType,
		FileSize:         blob.Size,
		UploaderID:       uploaderID,
	}
	if err := s.files.Create(file); err != nil {
		// 记录创建失败时磁盘文件成为孤儿，由一致性检查报告，不自动回滚
		logger.Errorf("保存文件元数据失败，磁盘文件成为孤儿 (路径: %s): %v", blob.Path, err)
		return nil, apperrors.WrapByCode(apperrors.ErrFileUploadFailed, err)
	}

	logger.Infof("文件上传成功。用户ID: %d, 原始文件名: '%s', UUID: %s, 大小: %d bytes",
		uploaderID, file.OriginalFilename, file.UniqueID, file.FileSize)
	return file, nil
}

// GetByUniqueID 根据对外唯一标识查询文件元数据
func (s *fileService) GetByUniqueID(uniqueID string) (*database.File, error) {
	file, err := s.files.FindByUniqueID(uniqueID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrRecordNotFound) {
			return nil, apperrors.NewByCode(apperrors.ErrFileNotFound)
		}
		logger.Errorf("查询文件记录失败 (UUID: %s): %v", uniqueID, err)
		return nil, err
	}
	return file, nil
}

// Download 根据对外唯一标识获取文件元数据和内容流
func (s *fileService) Download(uniqueID string) (*database.File, io.ReadCloser, error) {
	logger.Infof("公开文件访问尝试 (UUID: %s)", uniqueID)

	file, err := s.GetByUniqueID(uniqueID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrFileNotFound) {
			logger.Warnf("访问失败：文件在数据库中未找到 (UUID: %s)", uniqueID)
		}
		return nil, nil, err
	}

	content, err := s.gateway.Open(file.StoredPath)
	if err != nil {
		if stderrors.Is(err, storage.ErrBlobNotExist) {
			// 数据库和磁盘不同步，属于服务端一致性故障而非404
			logger.Errorf("严重错误：文件记录存在但文件在磁盘上丢失！(UUID: %s, 路径: %s)",
				uniqueID, file.StoredPath)
			return nil, nil, apperrors.WrapByCode(apperrors.ErrFileMissingOnDisk, err)
		}
		logger.Errorf("打开文件失败 (UUID: %s, 路径: %s): %v", uniqueID, file.StoredPath, err)
		return nil, nil, apperrors.WrapByCode(apperrors.ErrFileReadFailed, err)
	}

	logger.Debugf("正在提供文件 (UUID: %s)，路径: %s", uniqueID, file.StoredPath)
	return file, content, nil
}

// ListByUploader 查询指定用户的全部文件
func (s *fileService) ListByUploader(uploaderID uint) ([]database.File, error) {
	files, err := s.files.ListByUploader(uploaderID)
	if err != nil {
		logger.Errorf("查询用户文件列表失败 (用户ID: %d): %v", uploaderID, err)
		return nil, err
	}
	return files, nil
}

// Delete 删除文件
func (s *fileService) Delete(uniqueID string, requesterID uint) error {
	logger.Infof("用户 (ID: %d) 请求删除文件 (UUID: %s)", requesterID, uniqueID)

	file, err := s.GetByUniqueID(uniqueID)
	if err != nil {
		return err
	}

	if file.UploaderID != requesterID {
		logger.Warnf("删除被拒绝：用户 (ID: %d) 不是文件 (UUID: %s) 的所有者 (所有者ID: %d)",
			requesterID, uniqueID, file.UploaderID)
		return apperrors.NewByCode(apperrors.ErrNotFileOwner)
	}

	// 先尝试删除磁盘文件
	if err := s.gateway.Remove(file.StoredPath); err != nil {
		if stderrors.Is(err, storage.ErrBlobNotExist) {
			// 磁盘文件已丢失：记录一致性告警，但不中止删除流程
			logger.Warnf("一致性告警：删除时磁盘文件已不存在 (UUID: %s, 路径: %s)", uniqueID, file.StoredPath)
		} else {
			// 其他磁盘错误中止操作，记录与文件保持成对
			logger.Errorf("删除磁盘文件失败，中止删除 (UUID: %s, 路径: %s): %v", uniqueID, file.StoredPath, err)
			return apperrors.WrapByCode(apperrors.ErrFileRemoveFailed, err)
		}
	}

	if err := s.files.Delete(file); err != nil {
		logger.Errorf("删除文件记录失败 (UUID: %s): %v", uniqueID, err)
		return err
	}

	logger.Infof("文件删除成功 (UUID: %s)", uniqueID)
	return nil
}

// isAllowedExtension 检查文件扩展名是否允许
func (s *fileService) isAllowedExtension(ext string) bool {
	for _, allowed := range s.config.AllowedExtensions {
		if allowed == "*" {
			return true
		}
		if strings.EqualFold(allowed, ext) {
			return true
		}
	}
	return false
}
