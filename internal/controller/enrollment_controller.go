package controller

import (
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// Enroll godoc
// @Summary 免费报名
// @Description 仅当前价格为 0 的课程可直接报名，付费课程需提交支付
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "课程 slug"
// @Success 201 {object} util.Response{data=model.Enrollment} "报名成功"
// @Failure 400 {object} util.Response "付费课程"
// @Failure 409 {object} util.Response "已报名"
// @Router /api/courses/{slug}/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	enrollment, err := c.EnrollmentService.EnrollFree(ctx.Request.Context(), util.CurrentUserID(ctx), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

// Learn godoc
// @Summary 学习页
// @Description 课时列表及完成情况
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=service.LearnPage} "成功"
// @Failure 403 {object} util.Response "未报名"
// @Router /api/courses/{slug}/learn [get]
func (c *EnrollmentController) Learn(ctx *gin.Context) {
	page, err := c.EnrollmentService.Learn(util.CurrentUserID(ctx), ctx.Param("slug"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// Lesson godoc
// @Summary 课时详情
// @Description 含上一课和下一课
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   slug path string true "课程 slug"
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=service.LessonPage} "成功"
// @Failure 403 {object} util.Response "未报名"
// @Failure 404 {object} util.Response "课时不存在"
// @Router /api/courses/{slug}/lessons/{lessonId} [get]
func (c *EnrollmentController) Lesson(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	page, err := c.EnrollmentService.Lesson(util.CurrentUserID(ctx), ctx.Param("slug"), lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// CompleteLesson godoc
// @Summary 标记课时完成
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=service.CompletionResult} "成功"
// @Failure 403 {object} util.Response "未报名"
// @Router /api/lessons/{lessonId}/complete [post]
func (c *EnrollmentController) CompleteLesson(ctx *gin.Context) {
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	result, err := c.EnrollmentService.CompleteLesson(util.CurrentUserID(ctx), lessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// MyCourses godoc
// @Summary 我的课程
// @Tags 学习
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.EnrolledCourse} "成功"
// @Router /api/my-courses [get]
func (c *EnrollmentController) MyCourses(ctx *gin.Context) {
	courses, err := c.EnrollmentService.MyCourses(util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
