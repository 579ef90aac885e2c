package model

// swagger:model Review
type Review struct {
	RecordBase
	StudentID          uint   `gorm:"uniqueIndex:idx_review_student_course;not null" json:"studentId"`
	Student            User   `gorm:"foreignKey:StudentID" json:"student"`
	CourseID           uint   `gorm:"uniqueIndex:idx_review_student_course;index;not null" json:"courseId"`
	Rating             int    `gorm:"not null;check:chk_review_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Title              string `gorm:"size:200" json:"title"`
	Comment            string `gorm:"type:text;not null" json:"comment"`
	IsVerifiedPurchase bool   `json:"isVerifiedPurchase"`
	IsModerated        bool   `gorm:"index" json:"isModerated"`
	HelpfulCount       int    `gorm:"not null;default:0" json:"helpfulCount"`
	IsHelpful          bool   `json:"isHelpful"`
}

func (Review) TableName() string {
	return "reviews"
}

type ReviewHelpfulVote struct {
	RecordBase
	ReviewID uint `gorm:"uniqueIndex:idx_helpful_review_user;not null" json:"reviewId"`
	UserID   uint `gorm:"uniqueIndex:idx_helpful_review_user;not null" json:"userId"`
}

func (ReviewHelpfulVote) TableName() string {
	return "review_helpful_votes"
}
