package controller

import (
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PaymentController struct {
	PaymentService *service.PaymentService
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{PaymentService: paymentService}
}

// ReviewPaymentRequest 审核备注
// swagger:model ReviewPaymentRequest
type ReviewPaymentRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

// screenshot 可选文件，未上传返回 nil
func screenshot(ctx *gin.Context) *multipart.FileHeader {
	fh, err := ctx.FormFile("screenshot")
	if err != nil {
		return nil
	}
	return fh
}

// SubmitPayment godoc
// @Summary 提交线下支付
// @Description 金额取提交时的课程现价；已有待审核支付时返回 409 及其ID
// @Tags 支付
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "课程 slug"
// @Param   paymentMethodId formData int true "支付方式ID"
// @Param   transactionId formData string false "交易号"
// @Param   referenceNumber formData string false "参考号"
// @Param   studentNotes formData string false "备注"
// @Param   screenshot formData file false "支付截图"
// @Success 201 {object} util.Response{data=model.Payment} "提交成功"
// @Failure 409 {object} util.Response{data=object} "已报名或已有待审核支付"
// @Router /api/courses/{slug}/payments [post]
func (c *PaymentController) SubmitPayment(ctx *gin.Context) {
	var req service.PaymentInput
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	payment, err := c.PaymentService.Submit(ctx.Request.Context(), util.CurrentUserID(ctx), ctx.Param("slug"), &req, screenshot(ctx))
	if errors.Is(err, util.ErrPendingPaymentExists) && payment != nil {
		util.ErrorWithData(ctx, http.StatusConflict, err.Error(), gin.H{"paymentId": payment.ID})
		return
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, payment)
}

// GetPayment godoc
// @Summary 支付详情
// @Tags 支付
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "支付ID"
// @Success 200 {object} util.Response{data=model.Payment} "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/payments/{id} [get]
func (c *PaymentController) GetPayment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := currentUser(ctx)
	payment, err := c.PaymentService.Get(claims.UserID, claims.IsAdmin(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, payment)
}

// UploadScreenshot godoc
// @Summary 上传支付截图
// @Description 满足自动审核条件时直接通过
// @Tags 支付
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "支付ID"
// @Param   screenshot formData file true "支付截图"
// @Success 200 {object} util.Response{data=model.Payment} "成功"
// @Failure 400 {object} util.Response "图片无效"
// @Router /api/payments/{id}/screenshot [post]
func (c *PaymentController) UploadScreenshot(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	payment, err := c.PaymentService.UploadScreenshot(ctx.Request.Context(), util.CurrentUserID(ctx), id, screenshot(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, payment)
}

// CancelPayment godoc
// @Summary 撤回待审核支付
// @Tags 支付
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "支付ID"
// @Success 200 {object} util.Response{data=model.Payment} "成功"
// @Failure 409 {object} util.Response "支付不是待审核状态"
// @Router /api/payments/{id}/cancel [post]
func (c *PaymentController) CancelPayment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	payment, err := c.PaymentService.Cancel(util.CurrentUserID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, payment)
}

// MyPayments godoc
// @Summary 我的支付记录
// @Tags 支付
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/my-payments [get]
func (c *PaymentController) MyPayments(ctx *gin.Context) {
	resp, err := c.PaymentService.History(util.CurrentUserID(ctx), util.ParsePage(ctx.Query("page")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// Instructions godoc
// @Summary 付款说明
// @Tags 支付
// @Produce  json
// @Success 200 {object} util.Response{data=service.PaymentInstructions} "成功"
// @Router /api/payments/instructions [get]
func (c *PaymentController) Instructions(ctx *gin.Context) {
	instructions, err := c.PaymentService.Instructions()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, instructions)
}

// ActiveMethods godoc
// @Summary 可用支付方式
// @Tags 支付
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.PaymentMethod} "成功"
// @Router /api/payment-methods [get]
func (c *PaymentController) ActiveMethods(ctx *gin.Context) {
	methods, err := c.PaymentService.ActiveMethods()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, methods)
}

// AdminListPayments godoc
// @Summary 后台支付列表
// @Tags 后台-支付
// @Produce  json
// @Security ApiKeyAuth
// @Param   status query string false "状态" Enums(pending, approved, rejected, cancelled)
// @Param   method query string false "支付方式" Enums(easypaisa, jazzcash, bank_transfer, other)
// @Param   search query string false "学员、课程、交易号、参考号"
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/admin/payments [get]
func (c *PaymentController) AdminListPayments(ctx *gin.Context) {
	f := repository.PaymentFilter{
		Status: model.PaymentStatus(ctx.Query("status")),
		Method: model.PaymentMethodName(ctx.Query("method")),
		Search: ctx.Query("search"),
	}
	resp, err := c.PaymentService.AdminList(f, util.ParsePage(ctx.Query("page")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// ApprovePayment godoc
// @Summary 审核通过
// @Description 同一事务内激活报名并累加报名人数
// @Tags 后台-支付
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "支付ID"
// @Param   body body ReviewPaymentRequest false "备注"
// @Success 200 {object} util.Response{data=model.Payment} "成功"
// @Failure 409 {object} util.Response "支付不是待审核状态"
// @Router /api/admin/payments/{id}/approve [post]
func (c *PaymentController) ApprovePayment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ReviewPaymentRequest
	_ = ctx.ShouldBindJSON(&req)

	payment, err := c.PaymentService.Approve(ctx.Request.Context(), util.CurrentUserID(ctx), id, req.Notes)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, payment)
}

// RejectPayment godoc
// @Summary 驳回支付
// @Tags 后台-支付
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "支付ID"
// @Param   body body ReviewPaymentRequest false "驳回原因"
// @Success 200 {object} util.Response{data=model.Payment} "成功"
// @Failure 409 {object} util.Response "支付不是待审核状态"
// @Router /api/admin/payments/{id}/reject [post]
func (c *PaymentController) RejectPayment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ReviewPaymentRequest
	_ = ctx.ShouldBindJSON(&req)

	payment, err := c.PaymentService.Reject(ctx.Request.Context(), util.CurrentUserID(ctx), id, req.Notes)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, payment)
}

// AdminListMethods godoc
// @Summary 全部支付方式
// @Tags 后台-支付
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.PaymentMethod} "成功"
// @Router /api/admin/payment-methods [get]
func (c *PaymentController) AdminListMethods(ctx *gin.Context) {
	methods, err := c.PaymentService.AllMethods()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, methods)
}

// CreateMethod godoc
// @Summary 新建支付方式
// @Tags 后台-支付
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.PaymentMethodInput true "支付方式"
// @Success 201 {object} util.Response{data=model.PaymentMethod} "创建成功"
// @Router /api/admin/payment-methods [post]
func (c *PaymentController) CreateMethod(ctx *gin.Context) {
	var req service.PaymentMethodInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	method, err := c.PaymentService.CreateMethod(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, method)
}

// UpdateMethod godoc
// @Summary 修改支付方式
// @Tags 后台-支付
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "支付方式ID"
// @Param   body body service.PaymentMethodInput true "支付方式"
// @Success 200 {object} util.Response{data=model.PaymentMethod} "成功"
// @Router /api/admin/payment-methods/{id} [put]
func (c *PaymentController) UpdateMethod(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.PaymentMethodInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	method, err := c.PaymentService.UpdateMethod(id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, method)
}

// ToggleMethod godoc
// @Summary 启用/停用支付方式
// @Tags 后台-支付
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "支付方式ID"
// @Success 200 {object} util.Response{data=model.PaymentMethod} "成功"
// @Router /api/admin/payment-methods/{id}/toggle [post]
func (c *PaymentController) ToggleMethod(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	method, err := c.PaymentService.ToggleMethod(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, method)
}

// GetSettings godoc
// @Summary 支付设置
// @Tags 后台-支付
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.PaymentSettings} "成功"
// @Router /api/admin/payment-settings [get]
func (c *PaymentController) GetSettings(ctx *gin.Context) {
	settings, err := c.PaymentService.Settings()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// UpdateSettings godoc
// @Summary 修改支付设置
// @Tags 后台-支付
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.PaymentSettingsInput true "支付设置"
// @Success 200 {object} util.Response{data=model.PaymentSettings} "成功"
// @Router /api/admin/payment-settings [put]
func (c *PaymentController) UpdateSettings(ctx *gin.Context) {
	var req service.PaymentSettingsInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	settings, err := c.PaymentService.UpdateSettings(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}
