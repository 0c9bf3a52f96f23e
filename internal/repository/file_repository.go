package repository

import (
	stderrors "errors"

	"gorm.io/gorm"

	apperrors "filesafe/internal/errors"
	"filesafe/internal/database"
)

// FileRepository 文件元数据仓库接口
type FileRepository interface {
	// FindByUniqueID 根据对外唯一标识查询文件记录
	// 记录不存在（含已删除）时返回ErrRecordNotFound错误码
	FindByUniqueID(uniqueID string) (*database.File, error)

	// ListByUploader 查询指定用户的全部文件记录
	// 按创建时间倒序排列，最新的在前
	ListByUploader(uploaderID uint) ([]database.File, error)

	// Create 创建文件元数据记录，ID和CreatedAt由数据库分配
	Create(file *database.File) error

	// Delete 删除文件元数据记录
	// 调用方负责在此之前完成（或尝试完成）磁盘文件的删除
	Delete(file *database.File) error
}

// fileRepository 文件元数据仓库的gorm实现
type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建文件仓库实例
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepository{db: db}
}

// FindByUniqueID 根据对外唯一标识查询文件记录
func (r *fileRepository) FindByUniqueID(uniqueID string) (*database.File, error) {
	var file database.File
	if err := r.db.Where("unique_id = ?", uniqueID).First(&file).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WrapByCode(apperrors.ErrRecordNotFound, err)
		}
		return nil, apperrors.WrapByCode(apperrors.ErrDatabaseQuery, err)
	}
	return &file, nil
}

// ListByUploader 查询指定用户的全部文件记录
func (r *fileRepository) ListByUploader(uploaderID uint) ([]database.File, error) {
	var files []database.File
	if err := r.db.Where("uploader_id = ?", uploaderID).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, apperrors.WrapByCode(apperrors.ErrDatabaseQuery, err)
	}
	return files, nil
}

// Create 创建文件元数据记录
func (r *fileRepository) Create(file *database.File) error {
	if err := r.db.Create(file).Error; err != nil {
		return apperrors.WrapByCode(apperrors.ErrDatabaseInsert, err)
	}
	return nil
}

// Delete 删除文件元数据记录
func (r *fileRepository) Delete(file *database.File) error {
	if err := r.db.Delete(file).Error; err != nil {
		return apperrors.WrapByCode(apperrors.ErrDatabaseDelete, err)
	}
	return nil
}
