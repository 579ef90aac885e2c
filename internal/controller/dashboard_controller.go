package controller

import (
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	DashboardService *service.DashboardService
}

func NewDashboardController(dashboardService *service.DashboardService) *DashboardController {
	return &DashboardController{DashboardService: dashboardService}
}

// @Summary 学员仪表盘
// @Description 报名数、完成数、待审核支付和最近学习的课程
// @Tags 仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.StudentDashboard}
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	dashboard, err := c.DashboardService.Student(user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, dashboard)
}

// @Summary 后台概览
// @Description 用户、课程、报名、待审核支付和收入统计
// @Tags 后台-仪表盘
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=repository.AdminOverview}
// @Router /api/admin/dashboard [get]
func (c *DashboardController) GetAdminDashboard(ctx *gin.Context) {
	overview, err := c.DashboardService.Admin()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, overview)
}
