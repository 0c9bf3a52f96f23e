package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "filesafe/internal/errors"
	"filesafe/internal/database"
	"filesafe/internal/middleware"
	"filesafe/internal/response"
	fileservice "filesafe/internal/service/file"
)

// FileHandler 文件处理器
// @Description 文件上传、下载、列表和删除相关的HTTP处理器
type FileHandler struct {
	fileService fileservice.FileService
}

// NewFileHandler 创建文件处理器实例
func NewFileHandler(fileService fileservice.FileService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
	}
}

// UploadFile 上传文件
// @Summary 上传文件
// @Description 上传单个文件，需要Bearer令牌认证
// @Tags 文件管理
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "要上传的文件"
// @Success 201 {object} response.Response "上传成功"
// @Failure 400 {object} response.Response "请求参数错误"
// @Failure 401 {object} response.Response "未授权"
// @Failure 500 {object} response.Response "存储失败"
// @Security BearerAuth
// @Router /api/v1/files/upload [post]
func (h *FileHandler) UploadFile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, apperrors.GetErrorMessage(apperrors.ErrUnauthorized))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "未选择文件或文件无效")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.InternalServerError(c, "无法打开上传的文件")
		return
	}
	defer src.Close()

	mimeType := fileHeader.Header.Get("Content-Type")

	file, err := h.fileService.Upload(user.ID, fileHeader.Filename, mimeType, src)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Created(c, "文件上传成功", fileRecordJSON(file))
}

// ListMyFiles 获取当前用户的文件列表
// @Summary 获取自己的文件列表
// @Description 返回当前用户上传的全部文件，按创建时间倒序
// @Tags 文件管理
// @Produce json
// @Success 200 {object} response.Response "文件列表"
// @Failure 401 {object} response.Response "未授权"
// @Security BearerAuth
// @Router /api/v1/files [get]
func (h *FileHandler) ListMyFiles(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, apperrors.GetErrorMessage(apperrors.ErrUnauthorized))
		return
	}

	files, err := h.fileService.ListByUploader(user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	list := make([]gin.H, 0, len(files))
	for i := range files {
		list = append(list, fileRecordJSON(&files[i]))
	}

	response.Success(c, gin.H{
		"files": list,
		"total": len(list),
	})
}

// ViewFile 查看文件元数据
// @Summary 查看文件元数据
// @Description 根据唯一标识返回文件元数据，无需认证（唯一标识本身即访问凭证）
// @Tags 文件管理
// @Produce json
// @Param id path string true "文件唯一标识"
// @Success 200 {object} response.Response "文件元数据"
// @Failure 404 {object} response.Response "文件不存在"
// @Router /api/v1/files/{id} [get]
func (h *FileHandler) ViewFile(c *gin.Context) {
	uniqueID := c.Param("id")
	if uniqueID == "" {
		response.BadRequest(c, "文件唯一标识不能为空")
		return
	}

	file, err := h.fileService.GetByUniqueID(uniqueID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, fileRecordJSON(file))
}

// DownloadFile 下载文件
// @Summary 下载文件
// @Description 根据唯一标识下载文件内容，无需认证；
// @Description 原始文件名和声明的MIME类型作为下载提示返回
// @Tags 文件管理
// @Produce application/octet-stream
// @Param id path string true "文件唯一标识"
// @Success 200 {file} file "文件内容"
// @Failure 404 {object} response.Response "文件不存在"
// @Failure 500 {object} response.Response "磁盘文件丢失"
// @Router /api/v1/files/{id}/download [get]
func (h *FileHandler) DownloadFile(c *gin.Context) {
	uniqueID := c.Param("id")
	if uniqueID == "" {
		response.BadRequest(c, "文件唯一标识不能为空")
		return
	}

	file, content, err := h.fileService.Download(uniqueID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	defer content.Close()

	mimeType := file.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.OriginalFilename))
	c.DataFromReader(http.StatusOK, file.FileSize, mimeType, content, nil)
}

// DeleteFile 删除文件
// @Summary 删除文件
// @Description 删除自己上传的文件，先删除磁盘文件再删除记录
// @Tags 文件管理
// @Produce json
// @Param id path string true "文件唯一标识"
// @Success 200 {object} response.Response "删除成功"
// @Failure 401 {object} response.Response "未授权"
// @Failure 403 {object} response.Response "不是文件所有者"
// @Failure 404 {object} response.Response "文件不存在"
// @Failure 500 {object} response.Response "存储失败"
// @Security BearerAuth
// @Router /api/v1/files/{id} [delete]
func (h *FileHandler) DeleteFile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, apperrors.GetErrorMessage(apperrors.ErrUnauthorized))
		return
	}

	uniqueID := c.Param("id")
	if uniqueID == "" {
		response.BadRequest(c, "文件唯一标识不能为空")
		return
	}

	if err := h.fileService.Delete(uniqueID, user.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, "文件删除成功", gin.H{
		"unique_id": uniqueID,
	})
}

// fileRecordJSON 将文件记录序列化为对外的JSON结构
// 存储路径属于内部信息，不对外暴露
func fileRecordJSON(file *database.File) gin.H {
	return gin.H{
		"id":                file.ID,
		"unique_id":         file.UniqueID,
		"original_filename": file.OriginalFilename,
		"mime_type":         file.MimeType,
		"file_size":         file.FileSize,
		"created_at":        file.CreatedAt,
		"uploader_id":       file.UploaderID,
	}
}
