package controller

import (
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/service"
	"coursemart_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CatalogController struct {
	CatalogService *service.CatalogService
}

func NewCatalogController(catalogService *service.CatalogService) *CatalogController {
	return &CatalogController{CatalogService: catalogService}
}

func parseDecimal(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// courseFilter 从查询参数构造筛选条件，非法值忽略
func courseFilter(ctx *gin.Context) repository.CourseFilter {
	f := repository.CourseFilter{
		Query:      strings.TrimSpace(ctx.Query("q")),
		CategoryID: util.MustParseUint(ctx.Query("category")),
		PriceMin:   parseDecimal(ctx.Query("price_min")),
		PriceMax:   parseDecimal(ctx.Query("price_max")),
		Sort:       ctx.Query("sort"),
	}
	switch d := model.Difficulty(ctx.Query("difficulty")); d {
	case model.Beginner, model.Intermediate, model.Advanced:
		f.Difficulty = d
	}
	return f
}

// Home godoc
// @Summary 首页
// @Description 推荐课程、最新课程、分类和当前全站折扣
// @Tags 课程
// @Produce  json
// @Success 200 {object} util.Response{data=service.HomePage} "成功"
// @Router /api/home [get]
func (c *CatalogController) Home(ctx *gin.Context) {
	page, err := c.CatalogService.Home(ctx.Request.Context(), util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// ListCourses godoc
// @Summary 课程列表
// @Description 搜索、筛选、排序和分页，只返回已发布课程
// @Tags 课程
// @Produce  json
// @Param   q query string false "关键词（标题、简介、分类、讲师）"
// @Param   category query int false "分类ID"
// @Param   difficulty query string false "难度" Enums(beginner, intermediate, advanced)
// @Param   price_min query number false "最低价"
// @Param   price_max query number false "最高价"
// @Param   sort query string false "排序" Enums(newest, price_low, price_high, rating, students)
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	resp, err := c.CatalogService.List(ctx.Request.Context(), courseFilter(ctx),
		util.ParsePage(ctx.Query("page")), util.CoursesPerPage, util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, resp)
}

// LazyLoad godoc
// @Summary 课程无限滚动加载
// @Tags 课程
// @Produce  json
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=service.LazyPage} "成功"
// @Router /api/courses/lazy-load [get]
func (c *CatalogController) LazyLoad(ctx *gin.Context) {
	page, err := c.CatalogService.LazyLoad(ctx.Request.Context(), courseFilter(ctx),
		util.ParsePage(ctx.Query("page")), util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, page)
}

// CourseDetail godoc
// @Summary 课程详情
// @Description 课时列表、最新评价、相关课程、价格和报名状态
// @Tags 课程
// @Produce  json
// @Param   slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=service.CourseDetail} "成功"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/courses/{slug} [get]
func (c *CatalogController) CourseDetail(ctx *gin.Context) {
	detail, err := c.CatalogService.Detail(ctx.Request.Context(), ctx.Param("slug"), util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// Categories godoc
// @Summary 分类列表
// @Tags 课程
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Category} "成功"
// @Router /api/categories [get]
func (c *CatalogController) Categories(ctx *gin.Context) {
	categories, err := c.CatalogService.Categories()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, categories)
}

// CategoryCourses godoc
// @Summary 分类下的课程
// @Tags 课程
// @Produce  json
// @Param   id path int true "分类ID"
// @Param   page query int false "页码"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "分类不存在"
// @Router /api/categories/{id}/courses [get]
func (c *CatalogController) CategoryCourses(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	category, courses, err := c.CatalogService.CategoryCourses(ctx.Request.Context(), id,
		util.ParsePage(ctx.Query("page")), util.CurrentUserID(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"category": category,
		"courses":  courses,
	})
}
