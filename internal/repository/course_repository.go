package repository

import (
	"coursemart_backend/internal/model"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SortNewest    = "newest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortRating    = "rating"
	SortStudents  = "students"
)

// CourseFilter 课程列表筛选条件，零值表示不过滤
type CourseFilter struct {
	Query         string
	CategoryID    uint
	Difficulty    model.Difficulty
	PriceMin      decimal.NullDecimal
	PriceMax      decimal.NullDecimal
	Sort          string
	PublishedOnly bool
	FeaturedOnly  bool
}

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Omit("Category", "Instructor", "Lessons").Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Category").Preload("Instructor").First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) FindBySlug(slug string, publishedOnly bool) (*model.Course, error) {
	var course model.Course
	query := r.DB.Preload("Category").Preload("Instructor").Where("slug = ?", slug)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	err := query.First(&course).Error
	return &course, err
}

// SlugExists excludeID 为 0 时检查全部课程（含软删除）
func (r *CourseRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.DB.Unscoped().Model(&model.Course{}).Where("slug = ?", slug)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) filtered(f CourseFilter) *gorm.DB {
	query := r.DB.Model(&model.Course{}).
		Joins("LEFT JOIN categories ON categories.id = courses.category_id").
		Joins("LEFT JOIN users AS instructors ON instructors.id = courses.instructor_id")

	if f.PublishedOnly {
		query = query.Where("courses.is_published = ?", true)
	}
	if f.FeaturedOnly {
		query = query.Where("courses.is_featured = ?", true)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(courses.title) LIKE ? OR LOWER(courses.description) LIKE ? OR LOWER(categories.name) LIKE ? OR LOWER(instructors.name) LIKE ?",
			like, like, like, like,
		)
	}
	if f.CategoryID > 0 {
		query = query.Where("courses.category_id = ?", f.CategoryID)
	}
	if f.Difficulty != "" {
		query = query.Where("courses.difficulty = ?", f.Difficulty)
	}
	if f.PriceMin.Valid {
		query = query.Where("courses.price >= ?", f.PriceMin.Decimal)
	}
	if f.PriceMax.Valid {
		query = query.Where("courses.price <= ?", f.PriceMax.Decimal)
	}
	return query
}

func orderClause(sort string) string {
	switch sort {
	case SortPriceLow:
		return "courses.price ASC, courses.id DESC"
	case SortPriceHigh:
		return "courses.price DESC, courses.id DESC"
	case SortRating:
		return "courses.rating DESC, courses.id DESC"
	case SortStudents:
		return "courses.students_enrolled DESC, courses.id DESC"
	}
	return "courses.created_at DESC, courses.id DESC"
}

// List 分页查询，page 从 1 开始
func (r *CourseRepository) List(f CourseFilter, page, limit int) ([]model.Course, int64, error) {
	var total int64
	if err := r.filtered(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := r.filtered(f).
		Select("courses.*").
		Preload("Category").
		Preload("Instructor").
		Order(orderClause(f.Sort)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) Featured(limit int) ([]model.Course, error) {
	courses, _, err := r.List(CourseFilter{PublishedOnly: true, FeaturedOnly: true}, 1, limit)
	return courses, err
}

func (r *CourseRepository) Latest(limit int) ([]model.Course, error) {
	courses, _, err := r.List(CourseFilter{PublishedOnly: true}, 1, limit)
	return courses, err
}

// Related 同分类的其他已发布课程
func (r *CourseRepository) Related(course *model.Course, limit int) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Preload("Category").Preload("Instructor").
		Where("category_id = ? AND id <> ? AND is_published = ?", course.CategoryID, course.ID, true).
		Order("rating DESC, id DESC").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) IncrementEnrolled(courseID uint) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("students_enrolled", gorm.Expr("students_enrolled + ?", 1)).
		Error
}

func (r *CourseRepository) UpdateRating(courseID uint, rating decimal.Decimal, total int) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", courseID).
		UpdateColumns(map[string]interface{}{
			"rating":        rating,
			"total_ratings": total,
		}).Error
}

// BulkUpdate 批量修改发布/推荐状态，返回影响行数
func (r *CourseRepository) BulkUpdate(ids []uint, values map[string]interface{}) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.DB.Model(&model.Course{}).Where("id IN ?", ids).Updates(values)
	return res.RowsAffected, res.Error
}

// WithDiscountWindow 设置了折扣价和结束时间的课程，供定时同步使用
func (r *CourseRepository) WithDiscountWindow() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("discount_price IS NOT NULL AND discount_end_date IS NOT NULL").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) SetDiscountActive(courseID uint, active bool) error {
	return r.DB.Model(&model.Course{}).Where("id = ?", courseID).UpdateColumn("is_discount_active", active).Error
}

// SetDiscount 设置或清除课程单独折扣，discountPrice 无效时清除
func (r *CourseRepository) SetDiscount(course *model.Course) error {
	return r.DB.Model(course).Select(
		"discount_price", "discount_start_date", "discount_end_date", "is_discount_active",
	).Updates(course).Error
}

func (r *CourseRepository) CountPublished() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Where("is_published = ?", true).Count(&count).Error
	return count, err
}
