package controller

import (
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SiteController struct {
	SiteService *service.SiteService
}

func NewSiteController(siteService *service.SiteService) *SiteController {
	return &SiteController{SiteService: siteService}
}

// GetSettings godoc
// @Summary 站点设置
// @Tags 站点
// @Produce  json
// @Success 200 {object} util.Response{data=model.SiteSettings} "成功"
// @Router /api/site/settings [get]
func (c *SiteController) GetSettings(ctx *gin.Context) {
	settings, err := c.SiteService.Settings()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// Banners godoc
// @Summary 首页横幅
// @Description 仅返回启用且在展示时间内的横幅
// @Tags 站点
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Banner} "成功"
// @Router /api/site/banners [get]
func (c *SiteController) Banners(ctx *gin.Context) {
	banners, err := c.SiteService.VisibleBanners()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, banners)
}

// UpdateSettings godoc
// @Summary 修改站点设置
// @Tags 后台-站点
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.SiteSettingsInput true "站点设置"
// @Success 200 {object} util.Response{data=model.SiteSettings} "成功"
// @Router /api/admin/site/settings [put]
func (c *SiteController) UpdateSettings(ctx *gin.Context) {
	var req service.SiteSettingsInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	settings, err := c.SiteService.UpdateSettings(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// ResetSettings godoc
// @Summary 恢复默认站点设置
// @Tags 后台-站点
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.SiteSettings} "成功"
// @Router /api/admin/site/settings/reset [post]
func (c *SiteController) ResetSettings(ctx *gin.Context) {
	settings, err := c.SiteService.ResetSettings()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// AdminBanners godoc
// @Summary 全部横幅
// @Tags 后台-站点
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Banner} "成功"
// @Router /api/admin/banners [get]
func (c *SiteController) AdminBanners(ctx *gin.Context) {
	banners, err := c.SiteService.AllBanners()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, banners)
}

// CreateBanner godoc
// @Summary 新建横幅
// @Tags 后台-站点
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.BannerInput true "横幅"
// @Success 201 {object} util.Response{data=model.Banner} "创建成功"
// @Router /api/admin/banners [post]
func (c *SiteController) CreateBanner(ctx *gin.Context) {
	var req service.BannerInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	banner, err := c.SiteService.CreateBanner(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, banner)
}

// UpdateBanner godoc
// @Summary 修改横幅
// @Tags 后台-站点
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "横幅ID"
// @Param   body body service.BannerInput true "横幅"
// @Success 200 {object} util.Response{data=model.Banner} "成功"
// @Router /api/admin/banners/{id} [put]
func (c *SiteController) UpdateBanner(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.BannerInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	banner, err := c.SiteService.UpdateBanner(id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, banner)
}

// DeleteBanner godoc
// @Summary 删除横幅
// @Tags 后台-站点
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "横幅ID"
// @Success 200 {object} util.Response "删除成功"
// @Router /api/admin/banners/{id} [delete]
func (c *SiteController) DeleteBanner(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.SiteService.DeleteBanner(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
