package controller

import (
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// LoginRequest defines model for login
// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary 注册新用户
// @Description 公开注册只创建学员账号
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterInput true "用户注册信息"
// @Success 201 {object} util.Response{data=object} "创建成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 409 {object} util.Response "邮箱已被注册"
// @Failure 500 {object} util.Response "服务器内部错误"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, gin.H{"id": user.ID})
}

// Login godoc
// @Summary 用户登录
// @Description 邮箱密码登录，返回 JWT
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录信息"
// @Success 200 {object} util.Response{data=object} "登录成功"
// @Failure 401 {object} util.Response "邮箱或密码错误"
// @Failure 403 {object} util.Response "账号已禁用"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// GetProfile godoc
// @Summary 获取个人资料
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user, err := c.AuthService.Profile(util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProfileInput true "资料"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/profile [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	var req service.ProfileInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.UpdateProfile(util.CurrentUserID(ctx), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}
