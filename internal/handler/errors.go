package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "filesafe/internal/errors"
	"filesafe/internal/response"
)

// respondServiceError 将服务层错误翻译为HTTP响应
// 一致性故障对外只表现为内部错误，细节只进服务端日志；
// 存储读写失败允许透出底层I/O信息
func respondServiceError(c *gin.Context, err error) {
	appErr, ok := apperrors.GetAppError(err)
	if !ok {
		response.InternalServerError(c, apperrors.GetErrorMessage(apperrors.ErrInternalServer))
		return
	}

	switch appErr.Code {
	case apperrors.ErrUsernameTaken, apperrors.ErrInvalidParams,
		apperrors.ErrFileTypeNotAllowed, apperrors.ErrFileSizeTooLarge:
		response.BadRequest(c, appErr.Message)
	case apperrors.ErrInvalidCredentials, apperrors.ErrUnauthorized, apperrors.ErrInvalidAuthToken:
		response.Unauthorized(c, appErr.Message)
	case apperrors.ErrNotFileOwner, apperrors.ErrForbidden:
		response.Forbidden(c, appErr.Message)
	case apperrors.ErrFileNotFound, apperrors.ErrNotFound, apperrors.ErrUserNotFound:
		response.NotFound(c, appErr.Message)
	case apperrors.ErrFileMissingOnDisk:
		// 一致性故障：对外不暴露数据库与磁盘分歧的细节
		response.InternalServerError(c, apperrors.GetErrorMessage(apperrors.ErrInternalServer))
	case apperrors.ErrFileWriteFailed, apperrors.ErrFileRemoveFailed,
		apperrors.ErrFileReadFailed, apperrors.ErrFileUploadFailed:
		response.InternalServerError(c, appErr.Error())
	default:
		response.InternalServerError(c, apperrors.GetErrorMessage(apperrors.ErrInternalServer))
	}
}
