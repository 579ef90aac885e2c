package repository

import (
	"coursemart_backend/internal/model"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentFilter 后台支付列表筛选
type PaymentFilter struct {
	Status model.PaymentStatus
	Method model.PaymentMethodName
	Search string
}

type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

func (r *PaymentRepository) WithTx(tx *gorm.DB) *PaymentRepository {
	return &PaymentRepository{DB: tx}
}

func (r *PaymentRepository) Create(p *model.Payment) error {
	return r.DB.Omit("Student", "Course", "PaymentMethod", "VerifiedBy").Create(p).Error
}

func (r *PaymentRepository) Save(p *model.Payment) error {
	return r.DB.Omit("Student", "Course", "PaymentMethod", "VerifiedBy").Save(p).Error
}

func (r *PaymentRepository) FindByID(id uint) (*model.Payment, error) {
	var p model.Payment
	err := r.DB.Preload("Student").Preload("Course").Preload("PaymentMethod").Preload("VerifiedBy").
		First(&p, id).Error
	return &p, err
}

// LockByID 事务内读取并加行锁（SQLite 忽略）
func (r *PaymentRepository) LockByID(id uint) (*model.Payment, error) {
	var p model.Payment
	err := r.DB.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	return &p, err
}

func (r *PaymentRepository) FindPending(studentID, courseID uint) (*model.Payment, error) {
	var p model.Payment
	err := r.DB.Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, model.PaymentPending).
		Order("id DESC").
		First(&p).Error
	return &p, err
}

func (r *PaymentRepository) HasApproved(studentID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Payment{}).
		Where("student_id = ? AND course_id = ? AND status = ?", studentID, courseID, model.PaymentApproved).
		Count(&count).Error
	return count > 0, err
}

func (r *PaymentRepository) ListPendingByStudent(studentID uint, limit int) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.DB.Preload("Course").Preload("PaymentMethod").
		Where("student_id = ? AND status = ?", studentID, model.PaymentPending).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) ListByStudent(studentID uint, page, limit int) ([]model.Payment, int64, error) {
	query := r.DB.Model(&model.Payment{}).Where("student_id = ?", studentID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.Payment
	err := query.Preload("Course").Preload("PaymentMethod").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error
	return payments, total, err
}

func (r *PaymentRepository) adminQuery(f PaymentFilter) *gorm.DB {
	query := r.DB.Model(&model.Payment{}).
		Joins("JOIN users AS students ON students.id = payments.student_id").
		Joins("JOIN courses ON courses.id = payments.course_id").
		Joins("JOIN payment_methods ON payment_methods.id = payments.payment_method_id")

	if f.Status != "" {
		query = query.Where("payments.status = ?", f.Status)
	}
	if f.Method != "" {
		query = query.Where("payment_methods.name = ?", f.Method)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where(
			"LOWER(students.name) LIKE ? OR LOWER(students.email) LIKE ? OR LOWER(courses.title) LIKE ? OR LOWER(payments.transaction_id) LIKE ? OR LOWER(payments.reference_number) LIKE ?",
			like, like, like, like, like,
		)
	}
	return query
}

func (r *PaymentRepository) AdminList(f PaymentFilter, page, limit int) ([]model.Payment, int64, error) {
	var total int64
	if err := r.adminQuery(f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []model.Payment
	err := r.adminQuery(f).
		Select("payments.*").
		Preload("Student").Preload("Course").Preload("PaymentMethod").Preload("VerifiedBy").
		Order("payments.created_at DESC, payments.id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error
	return payments, total, err
}

// CountByStatus 后台看板
func (r *PaymentRepository) CountByStatus() (map[model.PaymentStatus]int64, error) {
	var rows []struct {
		Status model.PaymentStatus
		Count  int64
	}
	err := r.DB.Model(&model.Payment{}).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error
	out := map[model.PaymentStatus]int64{
		model.PaymentPending:   0,
		model.PaymentApproved:  0,
		model.PaymentRejected:  0,
		model.PaymentCancelled: 0,
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, err
}

type PaymentMethodRepository struct {
	DB *gorm.DB
}

func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{DB: db}
}

func (r *PaymentMethodRepository) Create(m *model.PaymentMethod) error {
	return r.DB.Create(m).Error
}

func (r *PaymentMethodRepository) Save(m *model.PaymentMethod) error {
	return r.DB.Save(m).Error
}

func (r *PaymentMethodRepository) FindByID(id uint) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	err := r.DB.First(&m, id).Error
	return &m, err
}

func (r *PaymentMethodRepository) ListActive() ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.DB.Where("is_active = ?", true).Order("id ASC").Find(&methods).Error
	return methods, err
}

func (r *PaymentMethodRepository) ListAll() ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := r.DB.Order("id ASC").Find(&methods).Error
	return methods, err
}
