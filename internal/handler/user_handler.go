// Package handler 提供HTTP请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "filesafe/internal/errors"
	"filesafe/internal/response"
	userservice "filesafe/internal/service/user"
)

// UserHandler 用户处理器
// @Description 用户注册和登录相关的HTTP处理器
type UserHandler struct {
	userService userservice.UserService
}

// NewUserHandler 创建用户处理器实例
func NewUserHandler(userService userservice.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// RegisterRequest 注册请求体
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest 登录请求体
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 注册新用户
// @Summary 注册新用户
// @Description 使用用户名和密码注册新用户
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 201 {object} response.Response "注册成功"
// @Failure 400 {object} response.Response "用户名已被注册或参数错误"
// @Router /api/v1/users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, apperrors.GetErrorMessage(apperrors.ErrInvalidParams))
		return
	}

	user, err := h.userService.Register(req.Username, req.Password)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrUsernameTaken) {
			response.BadRequest(c, apperrors.GetErrorMessage(apperrors.ErrUsernameTaken))
			return
		}
		respondServiceError(c, err)
		return
	}

	response.Created(c, "注册成功", gin.H{
		"id":       user.ID,
		"username": user.Username,
	})
}

// Login 用户登录
// @Summary 用户登录
// @Description 校验用户名和密码，签发访问令牌
// @Tags 用户管理
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} response.Response "登录成功"
// @Failure 401 {object} response.Response "用户名或密码错误"
// @Router /api/v1/users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, apperrors.GetErrorMessage(apperrors.ErrInvalidParams))
		return
	}

	token, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", "Bearer")
			response.Unauthorized(c, apperrors.GetErrorMessage(apperrors.ErrInvalidCredentials))
			return
		}
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}
