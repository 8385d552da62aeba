package api_router

import (
	"github.com/elsendo/elsendo-server/internal/app"
	"github.com/elsendo/elsendo-server/internal/dto"
	pkgapp "github.com/elsendo/elsendo-server/pkg/app"
	"github.com/elsendo/elsendo-server/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler user API router handler
// UserHandler 用户 API 路由处理器
type UserHandler struct {
	*Handler
}

// NewUserHandler creates UserHandler instance
// NewUserHandler 创建 UserHandler 实例
func NewUserHandler(a *app.App) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(a),
	}
}

// Register user registration
// Register 处理用户注册请求，注册功能可能在服务器设置中被禁用
func (h *UserHandler) Register(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserCreateRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		h.App.Logger().Error("UserHandler.Register.BindAndValid errs", zap.Error(errs))
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	userDTO, err := h.App.UserService.Register(ctx, params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.logError(ctx, "UserHandler.Register", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(userDTO))
}

// Login user login
// Login 处理用户登录请求并返回认证 Token
func (h *UserHandler) Login(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserLoginRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	userDTO, err := h.App.UserService.Login(ctx, params, pkgapp.GetRequestIP(c))
	if err != nil {
		h.logError(ctx, "UserHandler.Login", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(userDTO))
}

// Info returns current user info
// Info 获取当前登录用户的信息
func (h *UserHandler) Info(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	ctx := c.Request.Context()
	userDTO, err := h.App.UserService.GetInfo(ctx, pkgapp.GetUID(c))
	if err != nil {
		h.logError(ctx, "UserHandler.Info", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success.WithData(userDTO))
}

// ChangePassword changes the user password
// ChangePassword 修改当前用户密码
func (h *UserHandler) ChangePassword(c *gin.Context) {
	response := pkgapp.NewResponse(c)
	params := &dto.UserChangePasswordRequest{}

	valid, errs := pkgapp.BindAndValid(c, params)
	if !valid {
		response.ToResponse(code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()).WithData(errs.MapsToString()))
		return
	}

	ctx := c.Request.Context()
	if err := h.App.UserService.ChangePassword(ctx, pkgapp.GetUID(c), params); err != nil {
		h.logError(ctx, "UserHandler.ChangePassword", err)
		h.errorResponse(c, err)
		return
	}

	response.ToResponse(code.Success)
}
