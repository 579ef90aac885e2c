package service

import (
	"context"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/logger"
	"coursemart_backend/pkg/monitoring"
	"coursemart_backend/pkg/tracing"
	"errors"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PaymentInput struct {
	PaymentMethodID uint   `json:"paymentMethodId" form:"paymentMethodId" binding:"required"`
	TransactionID   string `json:"transactionId" form:"transactionId" binding:"max=100"`
	ReferenceNumber string `json:"referenceNumber" form:"referenceNumber" binding:"max=100"`
	StudentNotes    string `json:"studentNotes" form:"studentNotes" binding:"max=1000"`
}

type PaymentMethodInput struct {
	Name          model.PaymentMethodName `json:"name" binding:"required"`
	AccountNumber string                  `json:"accountNumber" binding:"max=100"`
	AccountTitle  string                  `json:"accountTitle" binding:"max=100"`
	IsActive      bool                    `json:"isActive"`
}

type PaymentSettingsInput struct {
	PlatformName             string          `json:"platformName" binding:"max=100"`
	PlatformEmail            string          `json:"platformEmail" binding:"omitempty,email,max=100"`
	PlatformPhone            string          `json:"platformPhone" binding:"max=20"`
	EasyPaisaInstructions    string          `json:"easypaisaInstructions"`
	JazzCashInstructions     string          `json:"jazzcashInstructions"`
	BankTransferInstructions string          `json:"bankTransferInstructions"`
	AutoApprovePayments      bool            `json:"autoApprovePayments"`
	AutoApproveAmountLimit   decimal.Decimal `json:"autoApproveAmountLimit"`
	NotifyAdminOnPayment     bool            `json:"notifyAdminOnPayment"`
	NotifyStudentOnApproval  bool            `json:"notifyStudentOnApproval"`
}

// PaymentInstructions 公开的付款说明页
type PaymentInstructions struct {
	Settings *model.PaymentSettings `json:"settings"`
	Methods  []model.PaymentMethod  `json:"paymentMethods"`
}

type PaymentService struct {
	DB             *gorm.DB
	Catalog        *CatalogService
	PaymentRepo    *repository.PaymentRepository
	MethodRepo     *repository.PaymentMethodRepository
	EnrollmentRepo *repository.EnrollmentRepository
	CourseRepo     *repository.CourseRepository
	SettingsRepo   *repository.SettingsRepository
	Media          *MediaService
	Storage        *StorageService
	Notifier       *NotificationService
	Now            func() time.Time
}

func NewPaymentService(
	db *gorm.DB,
	catalog *CatalogService,
	paymentRepo *repository.PaymentRepository,
	methodRepo *repository.PaymentMethodRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	settingsRepo *repository.SettingsRepository,
	media *MediaService,
	storage *StorageService,
	notifier *NotificationService,
) *PaymentService {
	return &PaymentService{
		DB:             db,
		Catalog:        catalog,
		PaymentRepo:    paymentRepo,
		MethodRepo:     methodRepo,
		EnrollmentRepo: enrollmentRepo,
		CourseRepo:     courseRepo,
		SettingsRepo:   settingsRepo,
		Media:          media,
		Storage:        storage,
		Notifier:       notifier,
		Now:            time.Now,
	}
}

func (s *PaymentService) find(id uint) (*model.Payment, error) {
	p, err := s.PaymentRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPaymentNotFound
	}
	return p, err
}

// Submit 金额取提交时的课程现价。已有待审核支付时返回该支付和 ErrPendingPaymentExists。
func (s *PaymentService) Submit(ctx context.Context, studentID uint, slug string, in *PaymentInput, screenshot *multipart.FileHeader) (*model.Payment, error) {
	course, err := s.Catalog.PublishedCourse(slug)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.EnrollmentRepo.IsEnrolled(studentID, course.ID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, util.ErrAlreadyEnrolled
	}

	global, err := s.Catalog.Discounts.Current(ctx)
	if err != nil {
		return nil, err
	}
	amount := course.CurrentPrice(s.Now(), global)
	// 免费课程走直接报名
	if amount.IsZero() {
		return nil, util.ErrFreeCourse
	}

	pending, err := s.PaymentRepo.FindPending(studentID, course.ID)
	if err == nil {
		return pending, util.ErrPendingPaymentExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	method, err := s.MethodRepo.FindByID(in.PaymentMethodID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPaymentMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	if !method.IsActive {
		return nil, util.ErrPaymentMethodInactive
	}

	payment := &model.Payment{
		StudentID:       studentID,
		CourseID:        course.ID,
		PaymentMethodID: method.ID,
		Amount:          amount,
		TransactionID:   in.TransactionID,
		ReferenceNumber: in.ReferenceNumber,
		StudentNotes:    in.StudentNotes,
		Status:          model.PaymentPending,
	}
	if err := s.PaymentRepo.Create(payment); err != nil {
		return nil, err
	}
	monitoring.PaymentsTotal.WithLabelValues(string(model.PaymentPending)).Inc()
	logger.Log.Info("Payment submitted",
		zap.Uint("paymentId", payment.ID),
		zap.Uint("studentId", studentID),
		zap.Uint("courseId", course.ID),
		zap.String("amount", payment.Amount.StringFixed(2)))

	settings, err := s.SettingsRepo.PaymentSettings()
	if err != nil {
		return nil, err
	}
	if full, err := s.find(payment.ID); err == nil {
		s.Notifier.PaymentSubmitted(ctx, settings, full)
	}

	if screenshot != nil {
		return s.UploadScreenshot(ctx, studentID, payment.ID, screenshot)
	}
	return s.find(payment.ID)
}

// UploadScreenshot 仅本人的待审核支付；满足自动审核条件时由系统直接通过
func (s *PaymentService) UploadScreenshot(ctx context.Context, studentID, paymentID uint, fh *multipart.FileHeader) (*model.Payment, error) {
	if fh == nil {
		return nil, util.ErrScreenshotRequired
	}
	payment, err := s.find(paymentID)
	if err != nil {
		return nil, err
	}
	if payment.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if !payment.IsPending() {
		return nil, util.ErrPaymentNotPending
	}

	url, err := s.Media.UploadScreenshot(ctx, fh)
	if err != nil {
		return nil, err
	}
	old := payment.ScreenshotURL
	payment.ScreenshotURL = url
	if err := s.PaymentRepo.Save(payment); err != nil {
		return nil, err
	}
	if err := s.Storage.DeleteURL(ctx, old); err != nil {
		logger.Log.Warn("Failed to delete old screenshot", zap.String("url", old), zap.Error(err))
	}

	settings, err := s.SettingsRepo.PaymentSettings()
	if err != nil {
		return nil, err
	}
	if settings.CanAutoApprove(payment.Amount) {
		return s.approve(ctx, nil, paymentID, "Auto-approved")
	}
	return payment, nil
}

// Approve 管理员审核通过：同一事务内更新支付并激活报名
func (s *PaymentService) Approve(ctx context.Context, adminID, paymentID uint, notes string) (*model.Payment, error) {
	return s.approve(ctx, &adminID, paymentID, notes)
}

func (s *PaymentService) approve(ctx context.Context, verifierID *uint, paymentID uint, notes string) (_ *model.Payment, err error) {
	ctx, span := tracing.StartSpan(ctx, "PaymentService.Approve", attribute.Int64("payment.id", int64(paymentID)))
	defer func() { tracing.EndSpan(span, err) }()

	var enrolledNow bool
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		payments := s.PaymentRepo.WithTx(tx)
		payment, err := payments.LockByID(paymentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPaymentNotFound
		}
		if err != nil {
			return err
		}
		if !payment.IsPending() {
			return util.ErrPaymentNotPending
		}

		now := s.Now()
		payment.Status = model.PaymentApproved
		payment.ScreenshotVerified = true
		payment.VerifiedByID = verifierID
		payment.VerifiedAt = &now
		if notes != "" {
			payment.AdminNotes = notes
		}
		if err := payments.Save(payment); err != nil {
			return err
		}

		_, changed, err := s.EnrollmentRepo.WithTx(tx).Activate(payment.StudentID, payment.CourseID, now)
		if err != nil {
			return err
		}
		enrolledNow = changed
		if changed {
			return s.CourseRepo.WithTx(tx).IncrementEnrolled(payment.CourseID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.PaymentsTotal.WithLabelValues(string(model.PaymentApproved)).Inc()
	if enrolledNow {
		monitoring.EnrollmentsTotal.WithLabelValues("payment").Inc()
	}
	span.SetAttributes(attribute.Bool("enrollment.created", enrolledNow))

	payment, err := s.find(paymentID)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Payment approved",
		zap.Uint("paymentId", payment.ID),
		zap.Uint("studentId", payment.StudentID),
		zap.Uint("courseId", payment.CourseID),
		zap.Bool("auto", verifierID == nil))

	if settings, err := s.SettingsRepo.PaymentSettings(); err == nil {
		s.Notifier.PaymentApproved(ctx, settings, payment)
	}
	return payment, nil
}

func (s *PaymentService) Reject(ctx context.Context, adminID, paymentID uint, notes string) (*model.Payment, error) {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		payments := s.PaymentRepo.WithTx(tx)
		payment, err := payments.LockByID(paymentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPaymentNotFound
		}
		if err != nil {
			return err
		}
		if !payment.IsPending() {
			return util.ErrPaymentNotPending
		}
		now := s.Now()
		payment.Status = model.PaymentRejected
		payment.AdminNotes = notes
		payment.VerifiedByID = &adminID
		payment.VerifiedAt = &now
		return payments.Save(payment)
	})
	if err != nil {
		return nil, err
	}

	monitoring.PaymentsTotal.WithLabelValues(string(model.PaymentRejected)).Inc()
	payment, err := s.find(paymentID)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("Payment rejected", zap.Uint("paymentId", payment.ID), zap.Uint("adminId", adminID))

	if settings, err := s.SettingsRepo.PaymentSettings(); err == nil {
		s.Notifier.PaymentRejected(ctx, settings, payment)
	}
	return payment, nil
}

// Cancel 学员撤回自己的待审核支付
func (s *PaymentService) Cancel(studentID, paymentID uint) (*model.Payment, error) {
	payment, err := s.find(paymentID)
	if err != nil {
		return nil, err
	}
	if payment.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if !payment.IsPending() {
		return nil, util.ErrPaymentNotPending
	}
	payment.Status = model.PaymentCancelled
	if err := s.PaymentRepo.Save(payment); err != nil {
		return nil, err
	}
	monitoring.PaymentsTotal.WithLabelValues(string(model.PaymentCancelled)).Inc()
	return payment, nil
}

// Get 本人或管理员可查看
func (s *PaymentService) Get(userID uint, isAdmin bool, paymentID uint) (*model.Payment, error) {
	payment, err := s.find(paymentID)
	if err != nil {
		return nil, err
	}
	if payment.StudentID != userID && !isAdmin {
		return nil, util.ErrPermissionDenied
	}
	return payment, nil
}

func (s *PaymentService) History(studentID uint, page int) (*util.PageResponse, error) {
	payments, total, err := s.PaymentRepo.ListByStudent(studentID, page, util.PaymentsPerPage)
	if err != nil {
		return nil, err
	}
	resp := util.NewPage(payments, total, page, util.PaymentsPerPage)
	return &resp, nil
}

func (s *PaymentService) AdminList(f repository.PaymentFilter, page int) (*util.PageResponse, error) {
	payments, total, err := s.PaymentRepo.AdminList(f, page, util.AdminPaymentsPerPage)
	if err != nil {
		return nil, err
	}
	resp := util.NewPage(payments, total, page, util.AdminPaymentsPerPage)
	return &resp, nil
}

func (s *PaymentService) ActiveMethods() ([]model.PaymentMethod, error) {
	return s.MethodRepo.ListActive()
}

func (s *PaymentService) AllMethods() ([]model.PaymentMethod, error) {
	return s.MethodRepo.ListAll()
}

func (s *PaymentService) CreateMethod(in *PaymentMethodInput) (*model.PaymentMethod, error) {
	if !in.Name.Valid() {
		return nil, util.ErrInvalidPaymentMethod
	}
	m := &model.PaymentMethod{
		Name:          in.Name,
		AccountNumber: in.AccountNumber,
		AccountTitle:  in.AccountTitle,
		IsActive:      in.IsActive,
	}
	return m, s.MethodRepo.Create(m)
}

func (s *PaymentService) UpdateMethod(id uint, in *PaymentMethodInput) (*model.PaymentMethod, error) {
	if !in.Name.Valid() {
		return nil, util.ErrInvalidPaymentMethod
	}
	m, err := s.MethodRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPaymentMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	m.Name = in.Name
	m.AccountNumber = in.AccountNumber
	m.AccountTitle = in.AccountTitle
	m.IsActive = in.IsActive
	return m, s.MethodRepo.Save(m)
}

func (s *PaymentService) ToggleMethod(id uint) (*model.PaymentMethod, error) {
	m, err := s.MethodRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrPaymentMethodNotFound
	}
	if err != nil {
		return nil, err
	}
	m.IsActive = !m.IsActive
	return m, s.MethodRepo.Save(m)
}

func (s *PaymentService) Settings() (*model.PaymentSettings, error) {
	return s.SettingsRepo.PaymentSettings()
}

func (s *PaymentService) UpdateSettings(in *PaymentSettingsInput) (*model.PaymentSettings, error) {
	if in.AutoApproveAmountLimit.IsNegative() {
		return nil, util.ErrInvalidPrice
	}
	settings, err := s.SettingsRepo.PaymentSettings()
	if err != nil {
		return nil, err
	}
	settings.PlatformName = in.PlatformName
	settings.PlatformEmail = in.PlatformEmail
	settings.PlatformPhone = in.PlatformPhone
	settings.EasyPaisaInstructions = in.EasyPaisaInstructions
	settings.JazzCashInstructions = in.JazzCashInstructions
	settings.BankTransferInstructions = in.BankTransferInstructions
	settings.AutoApprovePayments = in.AutoApprovePayments
	settings.AutoApproveAmountLimit = in.AutoApproveAmountLimit.Round(2)
	settings.NotifyAdminOnPayment = in.NotifyAdminOnPayment
	settings.NotifyStudentOnApproval = in.NotifyStudentOnApproval
	return settings, s.SettingsRepo.SavePaymentSettings(settings)
}

func (s *PaymentService) Instructions() (*PaymentInstructions, error) {
	settings, err := s.SettingsRepo.PaymentSettings()
	if err != nil {
		return nil, err
	}
	methods, err := s.MethodRepo.ListActive()
	if err != nil {
		return nil, err
	}
	return &PaymentInstructions{Settings: settings, Methods: methods}, nil
}
