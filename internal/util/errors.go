package util

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrAccountDisabled   = errors.New("account disabled")

	ErrCategoryNotFound = errors.New("category not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrSlugTaken        = errors.New("slug already in use")
	ErrCategoryInUse    = errors.New("category still has courses")
	ErrInvalidPrice     = errors.New("price must not be negative")
	ErrInvalidVideo     = errors.New("invalid video file")

	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrPaidCourse         = errors.New("course requires payment")
	ErrFreeCourse         = errors.New("course is free, enroll directly")
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	ErrReviewNotFound     = errors.New("review not found")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrCommentTooShort    = errors.New("review must be at least 10 characters long")
	ErrCommentTooLong     = errors.New("review cannot exceed 1000 characters")
	ErrInappropriate      = errors.New("review contains inappropriate content")
	ErrAlreadyVoted       = errors.New("already marked as helpful")
	ErrCannotVoteOwn      = errors.New("cannot vote for your own review")
	ErrDiscountNotFound   = errors.New("discount not found")
	ErrInvalidDiscount    = errors.New("discount price must be between 0 and the course price")
	ErrInvalidDiscountWin = errors.New("discount end date must be after start date")

	ErrPaymentNotFound       = errors.New("payment not found")
	ErrPaymentNotPending     = errors.New("payment is not pending")
	ErrPendingPaymentExists  = errors.New("a pending payment already exists for this course")
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrPaymentMethodInactive = errors.New("payment method is not active")
	ErrScreenshotRequired    = errors.New("payment screenshot is required")
	ErrInvalidImage          = errors.New("invalid image file")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method name")
	ErrBannerNotFound        = errors.New("banner not found")
	ErrInvalidBannerWindow   = errors.New("banner end date must be after start date")
)
