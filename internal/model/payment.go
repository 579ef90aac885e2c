package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethodName string

const (
	EasyPaisa    PaymentMethodName = "easypaisa"
	JazzCash     PaymentMethodName = "jazzcash"
	BankTransfer PaymentMethodName = "bank_transfer"
	OtherMethod  PaymentMethodName = "other"
)

func (n PaymentMethodName) Valid() bool {
	switch n {
	case EasyPaisa, JazzCash, BankTransfer, OtherMethod:
		return true
	}
	return false
}

// swagger:model PaymentMethod
type PaymentMethod struct {
	BaseModel
	Name          PaymentMethodName `gorm:"size:50;not null" json:"name"`
	AccountNumber string            `gorm:"size:100" json:"accountNumber"`
	AccountTitle  string            `gorm:"size:100" json:"accountTitle"`
	IsActive      bool              `gorm:"index" json:"isActive"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// swagger:model Payment
type Payment struct {
	BaseModel
	StudentID       uint          `gorm:"index;not null" json:"studentId"`
	Student         User          `gorm:"foreignKey:StudentID" json:"student"`
	CourseID        uint          `gorm:"index;not null" json:"courseId"`
	Course          Course        `gorm:"foreignKey:CourseID" json:"course"`
	PaymentMethodID uint          `gorm:"index;not null" json:"paymentMethodId"`
	PaymentMethod   PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"paymentMethod"`

	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	TransactionID   string          `gorm:"size:100" json:"transactionId"`
	ReferenceNumber string          `gorm:"size:100" json:"referenceNumber"`

	ScreenshotURL      string     `gorm:"size:255" json:"screenshotUrl"`
	ScreenshotVerified bool       `json:"screenshotVerified"`
	VerifiedByID       *uint      `gorm:"index" json:"verifiedById,omitempty"`
	VerifiedBy         *User      `gorm:"foreignKey:VerifiedByID" json:"verifiedBy,omitempty"`
	VerifiedAt         *time.Time `json:"verifiedAt,omitempty"`

	Status       PaymentStatus `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	AdminNotes   string        `gorm:"type:text" json:"adminNotes"`
	StudentNotes string        `gorm:"type:text" json:"studentNotes"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) IsPending() bool {
	return p.Status == PaymentPending
}

// PaymentSettings 全局支付设置，单例 ID=1
// swagger:model PaymentSettings
type PaymentSettings struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	PlatformName  string `gorm:"size:100" json:"platformName"`
	PlatformEmail string `gorm:"size:100" json:"platformEmail"`
	PlatformPhone string `gorm:"size:20" json:"platformPhone"`

	EasyPaisaInstructions    string `gorm:"type:text" json:"easypaisaInstructions"`
	JazzCashInstructions     string `gorm:"type:text" json:"jazzcashInstructions"`
	BankTransferInstructions string `gorm:"type:text" json:"bankTransferInstructions"`

	AutoApprovePayments    bool            `json:"autoApprovePayments"`
	AutoApproveAmountLimit decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"autoApproveAmountLimit"`

	NotifyAdminOnPayment    bool `json:"notifyAdminOnPayment"`
	NotifyStudentOnApproval bool `json:"notifyStudentOnApproval"`

	UpdatedAt time.Time `json:"updatedAt"`
}

func (PaymentSettings) TableName() string {
	return "payment_settings"
}

func DefaultPaymentSettings() *PaymentSettings {
	return &PaymentSettings{
		ID:                      1,
		PlatformName:            "AI Course Platform",
		PlatformEmail:           "admin@aicourseplatform.com",
		AutoApproveAmountLimit:  decimal.Zero,
		NotifyAdminOnPayment:    true,
		NotifyStudentOnApproval: true,
	}
}

// CanAutoApprove 开启自动审核且金额不超过上限
func (s *PaymentSettings) CanAutoApprove(amount decimal.Decimal) bool {
	return s.AutoApprovePayments && amount.LessThanOrEqual(s.AutoApproveAmountLimit)
}
