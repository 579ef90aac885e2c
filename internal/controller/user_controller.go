package controller

import (
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserController 后台账号管理
type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// DisableRequest 禁用/启用
// swagger:model DisableRequest
type DisableRequest struct {
	Disabled bool `json:"disabled"`
}

// GetUsers godoc
// @Summary 获取用户列表
// @Description 支持按角色、禁用状态和关键词筛选
// @Tags 后台-用户
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码" default(1)
// @Param   role query string false "角色" Enums(student, instructor, admin)
// @Param   disabled query bool false "是否禁用"
// @Param   search query string false "姓名或邮箱"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/admin/users [get]
func (c *UserController) GetUsers(ctx *gin.Context) {
	f := repository.UserFilter{
		Role:   model.UserRole(ctx.Query("role")),
		Search: ctx.Query("search"),
	}
	if v, err := strconv.ParseBool(ctx.Query("disabled")); err == nil {
		f.Disabled = &v
	}

	resp, err := c.UserService.List(f, util.ParsePage(ctx.Query("page")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// GetUser godoc
// @Summary 获取单个用户信息
// @Tags 后台-用户
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 404 {object} util.Response "用户不存在"
// @Router /api/admin/users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	user, err := c.UserService.Get(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// UpdateUser godoc
// @Summary 修改用户
// @Description 修改姓名、角色和禁用状态；不能降级或禁用自己
// @Tags 后台-用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body service.UpdateUserInput true "用户信息"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Failure 403 {object} util.Response "不能修改自己的权限"
// @Router /api/admin/users/{id} [put]
func (c *UserController) UpdateUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.UpdateUserInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user, err := c.UserService.Update(util.CurrentUserID(ctx), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// DisableUser godoc
// @Summary 禁用/启用用户
// @Tags 后台-用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Param   body body DisableRequest true "禁用状态"
// @Success 200 {object} util.Response{data=model.User} "成功"
// @Router /api/admin/users/{id}/disable [post]
func (c *UserController) DisableUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req DisableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user, err := c.UserService.SetDisabled(util.CurrentUserID(ctx), id, req.Disabled)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, user)
}

// ResetPassword godoc
// @Summary 重置用户密码
// @Description 返回一次性临时密码
// @Tags 后台-用户
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "用户ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/admin/users/{id}/reset-password [post]
func (c *UserController) ResetPassword(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	temp, err := c.UserService.ResetPassword(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"tempPassword": temp})
}
