package controller

import (
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"
	"mime/multipart"
	"strconv"

	"github.com/gin-gonic/gin"
)

const adminCoursesPerPage = 20

type CourseAdminController struct {
	CourseService *service.CourseService
}

func NewCourseAdminController(courseService *service.CourseService) *CourseAdminController {
	return &CourseAdminController{CourseService: courseService}
}

// BulkRequest 批量操作
// swagger:model BulkRequest
type BulkRequest struct {
	Action string `json:"action" binding:"required,oneof=publish unpublish feature unfeature"`
	IDs    []uint `json:"ids" binding:"required,min=1"`
}

// ListCourses godoc
// @Summary 后台课程列表
// @Tags 后台-课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   q query string false "关键词"
// @Param   category query int false "分类ID"
// @Param   published query bool false "仅已发布"
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/admin/courses [get]
func (c *CourseAdminController) ListCourses(ctx *gin.Context) {
	f := courseFilter(ctx)
	f.PublishedOnly, _ = strconv.ParseBool(ctx.Query("published"))
	page := util.ParsePage(ctx.Query("page"))

	list, total, err := c.CourseService.AdminList(f, page, adminCoursesPerPage)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.NewPage(list, total, page, adminCoursesPerPage))
}

// GetCourse godoc
// @Summary 后台课程详情
// @Tags 后台-课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Router /api/admin/courses/{id} [get]
func (c *CourseAdminController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.Get(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// CreateCourse godoc
// @Summary 新建课程
// @Description 未指定 slug 时按标题生成并自动去重
// @Tags 后台-课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CourseInput true "课程"
// @Success 201 {object} util.Response{data=model.Course} "创建成功"
// @Failure 409 {object} util.Response "slug 已被占用"
// @Router /api/admin/courses [post]
func (c *CourseAdminController) CreateCourse(ctx *gin.Context) {
	var req service.CourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.Create(&req, util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 修改课程
// @Tags 后台-课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   body body service.CourseInput true "课程"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Router /api/admin/courses/{id} [put]
func (c *CourseAdminController) UpdateCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.CourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.Update(id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Tags 后台-课程
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response "删除成功"
// @Router /api/admin/courses/{id} [delete]
func (c *CourseAdminController) DeleteCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.Delete(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// BulkAction godoc
// @Summary 批量发布/下架/推荐
// @Tags 后台-课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body BulkRequest true "批量操作"
// @Success 200 {object} util.Response{data=object} "受影响数量"
// @Router /api/admin/courses/bulk [post]
func (c *CourseAdminController) BulkAction(ctx *gin.Context) {
	var req BulkRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	n, err := c.CourseService.Bulk(req.Action, req.IDs)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"updated": n})
}

// UploadThumbnail godoc
// @Summary 上传课程封面
// @Description 图片裁剪为 800x450
// @Tags 后台-课程
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   thumbnail formData file true "封面图片"
// @Success 200 {object} util.Response{data=model.Course} "成功"
// @Router /api/admin/courses/{id}/thumbnail [post]
func (c *CourseAdminController) UploadThumbnail(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	fh, err := ctx.FormFile("thumbnail")
	if err != nil {
		util.BadRequest(ctx, "thumbnail is required")
		return
	}
	course, err := c.CourseService.UploadThumbnail(ctx.Request.Context(), id, fh)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// ListLessons godoc
// @Summary 课时列表
// @Tags 后台-课时
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Lesson} "成功"
// @Router /api/admin/courses/{id}/lessons [get]
func (c *CourseAdminController) ListLessons(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessons, err := c.CourseService.Lessons(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

func videoFile(ctx *gin.Context) *multipart.FileHeader {
	fh, err := ctx.FormFile("video")
	if err != nil {
		return nil
	}
	return fh
}

// CreateLesson godoc
// @Summary 新建课时
// @Description 上传视频时自动读取时长；未指定顺序时追加到末尾
// @Tags 后台-课时
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   title formData string true "标题"
// @Param   description formData string false "描述"
// @Param   videoUrl formData string false "外部视频地址"
// @Param   duration formData int false "时长(分钟)"
// @Param   order formData int false "顺序"
// @Param   isFree formData bool false "免费试看"
// @Param   video formData file false "视频文件"
// @Success 201 {object} util.Response{data=model.Lesson} "创建成功"
// @Failure 400 {object} util.Response "视频无效"
// @Router /api/admin/courses/{id}/lessons [post]
func (c *CourseAdminController) CreateLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.LessonInput
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.CreateLesson(ctx.Request.Context(), id, &req, videoFile(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// UpdateLesson godoc
// @Summary 修改课时
// @Tags 后台-课时
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Param   title formData string true "标题"
// @Param   video formData file false "视频文件"
// @Success 200 {object} util.Response{data=model.Lesson} "成功"
// @Router /api/admin/courses/{id}/lessons/{lessonId} [put]
func (c *CourseAdminController) UpdateLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	var req service.LessonInput
	if err := ctx.ShouldBind(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.UpdateLesson(ctx.Request.Context(), id, lessonID, &req, videoFile(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary 删除课时
// @Tags 后台-课时
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "课程ID"
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response "删除成功"
// @Router /api/admin/courses/{id}/lessons/{lessonId} [delete]
func (c *CourseAdminController) DeleteLesson(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteLesson(id, lessonID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateCategory godoc
// @Summary 新建分类
// @Tags 后台-分类
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.CategoryInput true "分类"
// @Success 201 {object} util.Response{data=model.Category} "创建成功"
// @Router /api/admin/categories [post]
func (c *CourseAdminController) CreateCategory(ctx *gin.Context) {
	var req service.CategoryInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	category, err := c.CourseService.CreateCategory(&req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, category)
}

// UpdateCategory godoc
// @Summary 修改分类
// @Tags 后台-分类
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "分类ID"
// @Param   body body service.CategoryInput true "分类"
// @Success 200 {object} util.Response{data=model.Category} "成功"
// @Router /api/admin/categories/{id} [put]
func (c *CourseAdminController) UpdateCategory(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req service.CategoryInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	category, err := c.CourseService.UpdateCategory(id, &req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, category)
}

// DeleteCategory godoc
// @Summary 删除分类
// @Description 分类下仍有课程时不能删除
// @Tags 后台-分类
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "分类ID"
// @Success 200 {object} util.Response "删除成功"
// @Failure 409 {object} util.Response "分类下仍有课程"
// @Router /api/admin/categories/{id} [delete]
func (c *CourseAdminController) DeleteCategory(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteCategory(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
