package repository

import (
	"coursemart_backend/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdminOverview 后台首页统计
type AdminOverview struct {
	Students         int64           `json:"students"`
	PublishedCourses int64           `json:"publishedCourses"`
	Enrollments      int64           `json:"enrollments"`
	PendingPayments  int64           `json:"pendingPayments"`
	PendingReviews   int64           `json:"pendingReviews"`
	Revenue          decimal.Decimal `json:"revenue"`
}

type DashboardRepository struct {
	DB *gorm.DB
}

func NewDashboardRepository(db *gorm.DB) *DashboardRepository {
	return &DashboardRepository{DB: db}
}

func (r *DashboardRepository) AdminOverview() (*AdminOverview, error) {
	o := &AdminOverview{}
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&o.Students, r.DB.Model(&model.User{}).Where("role = ?", model.Student)},
		{&o.PublishedCourses, r.DB.Model(&model.Course{}).Where("is_published = ?", true)},
		{&o.Enrollments, r.DB.Model(&model.Enrollment{}).Where("is_active = ?", true)},
		{&o.PendingPayments, r.DB.Model(&model.Payment{}).Where("status = ?", model.PaymentPending)},
		{&o.PendingReviews, r.DB.Model(&model.Review{}).Where("is_moderated = ?", false)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}

	var revenue float64
	err := r.DB.Model(&model.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("status = ?", model.PaymentApproved).
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	o.Revenue = decimal.NewFromFloat(revenue).Round(2)
	return o, nil
}
