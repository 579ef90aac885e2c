package controller

import (
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DiscountController struct {
	DiscountService *service.DiscountService
}

func NewDiscountController(discountService *service.DiscountService) *DiscountController {
	return &DiscountController{DiscountService: discountService}
}

// Banner godoc
// @Summary 当前折扣横幅
// @Description 无生效中或不展示横幅的折扣时 data 为 null
// @Tags 折扣
// @Produce  json
// @Success 200 {object} util.Response{data=model.GlobalDiscount} "成功"
// @Router /api/site/global-discount [get]
func (c *DiscountController) Banner(ctx *gin.Context) {
	d, err := c.DiscountService.Banner(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	if d == nil {
		util.Success(ctx, nil)
		return
	}
	util.Success(ctx, d)
}

// ListGlobal godoc
// @Summary 全站折扣列表
// @Tags 后台-折扣
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.GlobalDiscount} "成功"
// @Router /api/admin/discounts [get]
func (c *DiscountController) ListGlobal(ctx *gin.Context) {
	list, err := c.DiscountService.List()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// GetGlobal godoc
// @Summary 全站折扣详情
// @Tags 后台-折扣
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "折扣ID"
// @Success 200 {object} util.Response{data=model.GlobalDiscount} "成功"
// @Router /api/admin/discounts/{id} [get]
func (c *DiscountController) GetGlobal(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	d, err := c.DiscountService.Get(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, d)
}

// CreateGlobal godoc
// @Summary 新建全站折扣
// @Tags 后台-折扣
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.GlobalDiscountInput true "折扣"
// @Success 201 {object} util.Response{data=model.GlobalDiscount} "创建成功"
// @Failure 400 {object} util.Response "折扣比例或时间窗口不合法"
// @Router /api/admin/discounts [post]
func (c *DiscountController) CreateGlobal(ctx *gin.Context) {
	var req service.GlobalDiscountInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	d, err := c.DiscountService.Create(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, d)
}

// UpdateGlobal godoc
// @Summary 修改全站折扣
// @Tags 后台-折扣
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "折扣ID"
// @Param   body body service.GlobalDiscountInput true "折扣"
// @Success 200 {object} util.Response{data=model.GlobalDiscount} "成功"
// @Router /api/admin/discounts/{id} [put]
func (c *DiscountController) UpdateGlobal(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.GlobalDiscountInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	d, err := c.DiscountService.Update(ctx.Request.Context(), id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, d)
}

// DeleteGlobal godoc
// @Summary 删除全站折扣
// @Tags 后台-折扣
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "折扣ID"
// @Success 200 {object} util.Response "删除成功"
// @Router /api/admin/discounts/{id} [delete]
func (c *DiscountController) DeleteGlobal(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.DiscountService.Delete(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// EndNow godoc
// @Summary 立即结束全站折扣
// @Tags 后台-折扣
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "折扣ID"
// @Success 200 {object} util.Response{data=model.GlobalDiscount} "成功"
// @Router /api/admin/discounts/{id}/end [post]
func (c *DiscountController) EndNow(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	d, err := c.DiscountService.EndNow(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, d)
}

// SetCourseDiscount godoc
// @Summary 设置课程折扣
// @Description 折扣价须在 0 与原价之间
// @Tags 后台-折扣
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body service.CourseDiscountInput true "课程折扣"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Failure 400 {object} util.Response "折扣价不合法"
// @Router /api/admin/courses/{id}/discount [put]
func (c *DiscountController) SetCourseDiscount(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.CourseDiscountInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.DiscountService.SetCourseDiscount(id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// ClearCourseDiscount godoc
// @Summary 取消课程折扣
// @Tags 后台-折扣
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Router /api/admin/courses/{id}/discount [delete]
func (c *DiscountController) ClearCourseDiscount(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.DiscountService.ClearCourseDiscount(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Sync godoc
// @Summary 同步折扣状态
// @Description 按时间窗口刷新课程与全站折扣的生效标记
// @Tags 后台-折扣
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.SyncResult} "成功"
// @Router /api/admin/discounts/sync [post]
func (c *DiscountController) Sync(ctx *gin.Context) {
	result, err := c.DiscountService.Sync(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
