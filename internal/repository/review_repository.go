package repository

import (
	"coursemart_backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ReviewSortNewest  = "newest"
	ReviewSortOldest  = "oldest"
	ReviewSortHighest = "highest"
	ReviewSortLowest  = "lowest"
	ReviewSortHelpful = "helpful"
)

type ReviewFilter struct {
	Rating       int
	VerifiedOnly bool
	HelpfulOnly  bool
	Sort         string
}

// ReviewStats 单门课程的公开评价统计
type ReviewStats struct {
	Total        int64           `json:"totalReviews"`
	Average      decimal.Decimal `json:"averageRating"`
	Distribution map[int]int64   `json:"ratingDistribution"`
	Verified     int64           `json:"verifiedReviews"`
	Helpful      int64           `json:"helpfulReviews"`
}

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) WithTx(tx *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: tx}
}

func (r *ReviewRepository) FindByID(id uint) (*model.Review, error) {
	var review model.Review
	err := r.DB.Preload("Student").First(&review, id).Error
	return &review, err
}

func (r *ReviewRepository) FindByStudentCourse(studentID, courseID uint) (*model.Review, error) {
	var review model.Review
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&review).Error
	return &review, err
}

func (r *ReviewRepository) Save(review *model.Review) error {
	return r.DB.Omit("Student").Save(review).Error
}

func (r *ReviewRepository) Delete(review *model.Review) error {
	if err := r.DB.Where("review_id = ?", review.ID).Delete(&model.ReviewHelpfulVote{}).Error; err != nil {
		return err
	}
	return r.DB.Delete(review).Error
}

// Aggregate 已审核评价的平均分（保留两位）和数量
func (r *ReviewRepository) Aggregate(courseID uint) (decimal.Decimal, int, error) {
	var row struct {
		Avg   float64
		Total int
	}
	err := r.DB.Model(&model.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS total").
		Where("course_id = ? AND is_moderated = ?", courseID, true).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return decimal.NewFromFloat(row.Avg).Round(2), row.Total, nil
}

func (r *ReviewRepository) publicQuery(courseID uint) *gorm.DB {
	return r.DB.Model(&model.Review{}).Where("course_id = ? AND is_moderated = ?", courseID, true)
}

func reviewOrder(sort string) string {
	switch sort {
	case ReviewSortOldest:
		return "created_at ASC, id ASC"
	case ReviewSortHighest:
		return "rating DESC, created_at DESC"
	case ReviewSortLowest:
		return "rating ASC, created_at DESC"
	case ReviewSortHelpful:
		return "helpful_count DESC, created_at DESC"
	}
	return "created_at DESC, id DESC"
}

func (r *ReviewRepository) ListPublic(courseID uint, f ReviewFilter, page, limit int) ([]model.Review, int64, error) {
	query := r.publicQuery(courseID)
	if f.Rating >= 1 && f.Rating <= 5 {
		query = query.Where("rating = ?", f.Rating)
	}
	if f.VerifiedOnly {
		query = query.Where("is_verified_purchase = ?", true)
	}
	if f.HelpfulOnly {
		query = query.Where("is_helpful = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []model.Review
	err := query.Preload("Student").
		Order(reviewOrder(f.Sort)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	return reviews, total, err
}

func (r *ReviewRepository) Latest(courseID uint, limit int) ([]model.Review, error) {
	var reviews []model.Review
	err := r.publicQuery(courseID).Preload("Student").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) Stats(courseID uint) (*ReviewStats, error) {
	stats := &ReviewStats{
		Distribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	var rows []struct {
		Rating int
		Count  int64
	}
	err := r.publicQuery(courseID).
		Select("rating, COUNT(*) AS count").
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sum := int64(0)
	for _, row := range rows {
		stats.Distribution[row.Rating] = row.Count
		stats.Total += row.Count
		sum += int64(row.Rating) * row.Count
	}
	if stats.Total > 0 {
		stats.Average = decimal.NewFromInt(sum).Div(decimal.NewFromInt(stats.Total)).Round(2)
	}

	if err := r.publicQuery(courseID).Where("is_verified_purchase = ?", true).Count(&stats.Verified).Error; err != nil {
		return nil, err
	}
	if err := r.publicQuery(courseID).Where("is_helpful = ?", true).Count(&stats.Helpful).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// AddHelpfulVote 插入投票并累加计数，重复投票返回 gorm.ErrDuplicatedKey 或唯一约束错误
func (r *ReviewRepository) AddHelpfulVote(reviewID, userID uint) error {
	vote := &model.ReviewHelpfulVote{ReviewID: reviewID, UserID: userID}
	if err := r.DB.Create(vote).Error; err != nil {
		return err
	}
	return r.DB.Model(&model.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("helpful_count", gorm.Expr("helpful_count + ?", 1)).Error
}

func (r *ReviewRepository) HasVoted(reviewID, userID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.ReviewHelpfulVote{}).
		Where("review_id = ? AND user_id = ?", reviewID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepository) SetHelpful(reviewID uint, helpful bool) error {
	return r.DB.Model(&model.Review{}).Where("id = ?", reviewID).UpdateColumn("is_helpful", helpful).Error
}

func (r *ReviewRepository) SetModerated(reviewID uint, moderated bool) error {
	return r.DB.Model(&model.Review{}).Where("id = ?", reviewID).Update("is_moderated", moderated).Error
}

// AdminList moderated 为 nil 时不过滤
func (r *ReviewRepository) AdminList(moderated *bool, courseID uint, page, limit int) ([]model.Review, int64, error) {
	query := r.DB.Model(&model.Review{})
	if moderated != nil {
		query = query.Where("is_moderated = ?", *moderated)
	}
	if courseID > 0 {
		query = query.Where("course_id = ?", courseID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reviews []model.Review
	err := query.Preload("Student").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	return reviews, total, err
}
