// Package response 提供API统一响应格式
package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Response 统一返回值结构体
// @Description API统一响应格式
type Response struct {
	// 状态码，0表示成功，非0表示失败
	Code int `json:"code" example:"0"`
	// 响应消息
	Message string `json:"message" example:"success"`
	// 响应数据
	Data interface{} `json:"data,omitempty"`
	// 时间戳
	Timestamp int64 `json:"timestamp" example:"1640995200"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:      0,
		Message:   "success",
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:      0,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// Created 201成功响应，用于资源创建
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:      0,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
}

// BadRequest 400错误响应
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{
		Code:      400,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}

// Unauthorized 401错误响应
func Unauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, Response{
		Code:      401,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}

// Forbidden 403错误响应
func Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden, Response{
		Code:      403,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}

// NotFound 404错误响应
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Response{
		Code:      404,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}

// InternalServerError 500错误响应
func InternalServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Response{
		Code:      500,
		Message:   message,
		Timestamp: time.Now().Unix(),
	})
}
