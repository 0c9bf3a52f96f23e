// Package errors 定义应用程序统一的错误码和错误类型
// 错误码按领域分段：通用(1000)、用户与认证(2000)、文件(3000)、数据库(4000)
package errors

import (
	"fmt"

	"filesafe/internal/i18n"
)

// ErrorCode 错误码类型
type ErrorCode int

// 定义错误码常量
const (
	// 通用错误码 (1000-1999)
	ErrSuccess        ErrorCode = 0    // 成功
	ErrInternalServer ErrorCode = 1000 // 服务器内部错误
	ErrInvalidParams  ErrorCode = 1001 // 参数错误
	ErrUnauthorized   ErrorCode = 1002 // 未授权
	ErrForbidden      ErrorCode = 1003 // 禁止访问
	ErrNotFound       ErrorCode = 1004 // 资源未找到

	// 用户与认证错误码 (2000-2999)
	ErrUsernameTaken      ErrorCode = 2000 // 用户名已被注册
	ErrInvalidCredentials ErrorCode = 2001 // 用户名或密码错误
	ErrUserNotFound       ErrorCode = 2002 // 用户不存在
	ErrRegisterFailed     ErrorCode = 2003 // 注册失败
	ErrInvalidAuthToken   ErrorCode = 2004 // 令牌无效或已过期

	// 文件错误码 (3000-3999)
	ErrFileNotFound       ErrorCode = 3000 // 文件未找到
	ErrFileMissingOnDisk  ErrorCode = 3001 // 记录存在但磁盘文件丢失（一致性故障）
	ErrFileUploadFailed   ErrorCode = 3002 // 文件上传失败
	ErrFileWriteFailed    ErrorCode = 3003 // 文件写入失败
	ErrFileRemoveFailed   ErrorCode = 3004 // 文件删除失败
	ErrFileReadFailed     ErrorCode = 3005 // 文件读取失败
	ErrFileSizeTooLarge   ErrorCode = 3006 // 文件大小超限
	ErrFileTypeNotAllowed ErrorCode = 3007 // 文件类型不允许
	ErrNotFileOwner       ErrorCode = 3008 // 无权操作他人文件

	// 数据库错误码 (4000-4999)
	ErrDatabaseQuery       ErrorCode = 4000 // 数据库查询错误
	ErrDatabaseInsert      ErrorCode = 4001 // 数据库插入错误
	ErrDatabaseDelete      ErrorCode = 4002 // 数据库删除错误
	ErrRecordNotFound      ErrorCode = 4003 // 记录未找到
	ErrRecordAlreadyExists ErrorCode = 4004 // 记录已存在
)

// AppError 应用错误结构体
// @Description 应用程序统一错误格式
type AppError struct {
	// 错误码
	Code ErrorCode `json:"code"`
	// 错误消息
	Message string `json:"message"`
	// 详细错误信息
	Details string `json:"details,omitempty"`
	// 原始错误
	OriginalError error `json:"-"`
}

// Error 实现error接口
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 返回原始错误，支持errors.Is/As链
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// WithDetails 添加详细错误信息
func (e *AppError) WithDetails(details string) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewByCode 根据错误码创建应用错误，消息取自语言包
func NewByCode(code ErrorCode) *AppError {
	return New(code, GetErrorMessage(code))
}

// Wrap 包装原始错误
func Wrap(code ErrorCode, message string, err error) *AppError {
	appErr := &AppError{
		Code:          code,
		Message:       message,
		OriginalError: err,
	}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// WrapByCode 根据错误码包装原始错误，消息取自语言包
func WrapByCode(code ErrorCode, err error) *AppError {
	return Wrap(code, GetErrorMessage(code), err)
}

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetAppError 从错误中提取应用错误
func GetAppError(err error) (*AppError, bool) {
	appErr, ok := err.(*AppError)
	return appErr, ok
}

// IsCode 判断错误是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	if appErr, ok := GetAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// 错误码到i18n键的映射
var errorCodeToKeyMap = map[ErrorCode]string{
	ErrSuccess:        "success",
	ErrInternalServer: "internal_server_error",
	ErrInvalidParams:  "invalid_params",
	ErrUnauthorized:   "unauthorized",
	ErrForbidden:      "forbidden",
	ErrNotFound:       "not_found",

	ErrUsernameTaken:      "username_taken",
	ErrInvalidCredentials: "invalid_credentials",
	ErrUserNotFound:       "user_not_found",
	ErrRegisterFailed:     "register_failed",
	ErrInvalidAuthToken:   "invalid_token",

	ErrFileNotFound:       "file_not_found",
	ErrFileMissingOnDisk:  "file_missing_on_disk",
	ErrFileUploadFailed:   "file_upload_failed",
	ErrFileWriteFailed:    "file_write_failed",
	ErrFileRemoveFailed:   "file_remove_failed",
	ErrFileReadFailed:     "file_read_failed",
	ErrFileSizeTooLarge:   "file_size_too_large",
	ErrFileTypeNotAllowed: "file_type_not_allowed",
	ErrNotFileOwner:       "not_file_owner",

	ErrDatabaseQuery:       "database_query",
	ErrDatabaseInsert:      "database_insert",
	ErrDatabaseDelete:      "database_delete",
	ErrRecordNotFound:      "record_not_found",
	ErrRecordAlreadyExists: "record_already_exists",
}

// GetErrorMessage 根据错误码获取错误消息（使用默认语言）
func GetErrorMessage(code ErrorCode) string {
	return GetErrorMessageWithLang(code, i18n.GetInstance().GetDefaultLanguage())
}

// GetErrorMessageWithLang 根据错误码和语言获取错误消息
func GetErrorMessageWithLang(code ErrorCode, lang string) string {
	key, exists := errorCodeToKeyMap[code]
	if !exists {
		key = "unknown_error"
	}
	return i18n.GetInstance().Translate(key, lang)
}
