package controller

import (
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ReviewController struct {
	ReviewService *service.ReviewService
}

func NewReviewController(reviewService *service.ReviewService) *ReviewController {
	return &ReviewController{ReviewService: reviewService}
}

// ModerateRequest 审核操作
// swagger:model ModerateRequest
type ModerateRequest struct {
	Approved bool `json:"approved"`
}

// ListReviews godoc
// @Summary 课程评价列表
// @Tags 评价
// @Produce  json
// @Param   slug path string true "课程 slug"
// @Param   rating query int false "评分筛选 1-5"
// @Param   verified_only query bool false "仅已购"
// @Param   helpful_only query bool false "仅有用"
// @Param   sort query string false "排序" Enums(newest, oldest, highest, lowest, helpful)
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{slug}/reviews [get]
func (c *ReviewController) ListReviews(ctx *gin.Context) {
	rating, _ := strconv.Atoi(ctx.Query("rating"))
	f := repository.ReviewFilter{
		Rating:       rating,
		VerifiedOnly: ctx.Query("verified_only") == "true",
		HelpfulOnly:  ctx.Query("helpful_only") == "true",
		Sort:         ctx.Query("sort"),
	}
	resp, err := c.ReviewService.List(ctx.Param("slug"), f, util.ParsePage(ctx.Query("page")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// ReviewStats godoc
// @Summary 课程评价统计
// @Tags 评价
// @Produce  json
// @Param   slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=repository.ReviewStats} "成功"
// @Router /api/courses/{slug}/reviews/stats [get]
func (c *ReviewController) ReviewStats(ctx *gin.Context) {
	stats, err := c.ReviewService.Stats(ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}

// SaveReview godoc
// @Summary 发表或修改评价
// @Description 每个学员对同一课程只有一条评价，再次提交即修改
// @Tags 评价
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "课程 slug"
// @Param   body body service.ReviewInput true "评价内容"
// @Success 201 {object} util.Response{data=model.Review} "创建成功"
// @Success 200 {object} util.Response{data=model.Review} "修改成功"
// @Failure 400 {object} util.Response "评价内容不合法"
// @Router /api/courses/{slug}/reviews [post]
func (c *ReviewController) SaveReview(ctx *gin.Context) {
	var req service.ReviewInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	review, created, err := c.ReviewService.Save(ctx.Request.Context(), util.CurrentUserID(ctx), ctx.Param("slug"), &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, review)
		return
	}
	util.Success(ctx, review)
}

// DeleteReview godoc
// @Summary 删除评价
// @Description 作者本人或管理员
// @Tags 评价
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "评价ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/reviews/{id} [delete]
func (c *ReviewController) DeleteReview(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	claims := currentUser(ctx)
	if err := c.ReviewService.Delete(claims.UserID, claims.IsAdmin(), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// MarkHelpful godoc
// @Summary 标记评价有用
// @Tags 评价
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "评价ID"
// @Success 200 {object} util.Response{data=service.HelpfulResult} "成功"
// @Failure 403 {object} util.Response "不能给自己的评价投票"
// @Failure 409 {object} util.Response "已投票"
// @Router /api/reviews/{id}/helpful [post]
func (c *ReviewController) MarkHelpful(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	result, err := c.ReviewService.MarkHelpful(util.CurrentUserID(ctx), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// AdminListReviews godoc
// @Summary 后台评价列表
// @Tags 后台-评价
// @Produce  json
// @Security ApiKeyAuth
// @Param   moderated query bool false "审核状态"
// @Param   course query int false "课程ID"
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/admin/reviews [get]
func (c *ReviewController) AdminListReviews(ctx *gin.Context) {
	var moderated *bool
	if v, err := strconv.ParseBool(ctx.Query("moderated")); err == nil {
		moderated = &v
	}
	resp, err := c.ReviewService.AdminList(moderated, util.MustParseUint(ctx.Query("course")), util.ParsePage(ctx.Query("page")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// ModerateReview godoc
// @Summary 审核评价
// @Description 通过或隐藏，课程评分随之更新
// @Tags 后台-评价
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "评价ID"
// @Param   body body ModerateRequest true "审核结果"
// @Success 200 {object} util.Response{data=model.Review} "成功"
// @Router /api/admin/reviews/{id}/moderate [put]
func (c *ReviewController) ModerateReview(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ModerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}
	review, err := c.ReviewService.Moderate(id, req.Approved)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, review)
}
