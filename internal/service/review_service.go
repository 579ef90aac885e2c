package service

import (
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/logger"
	"coursemart_backend/pkg/monitoring"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minCommentLength = 10
	maxCommentLength = 1000
)

var bannedReviewWords = []string{"spam", "advertisement", "promotion"}

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required"`
	Title   string `json:"title" binding:"max=200"`
	Comment string `json:"comment" binding:"required"`
}

// Validate 返回去除首尾空白后的评论内容
func (in *ReviewInput) Validate() (string, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return "", util.ErrInvalidRating
	}
	comment := strings.TrimSpace(in.Comment)
	n := utf8.RuneCountInString(comment)
	if n < minCommentLength {
		return "", util.ErrCommentTooShort
	}
	if n > maxCommentLength {
		return "", util.ErrCommentTooLong
	}
	lower := strings.ToLower(comment)
	for _, w := range bannedReviewWords {
		if strings.Contains(lower, w) {
			return "", util.ErrInappropriate
		}
	}
	return comment, nil
}

type HelpfulResult struct {
	HelpfulCount int  `json:"helpfulCount"`
	IsHelpful    bool `json:"isHelpful"`
}

type ReviewService struct {
	DB          *gorm.DB
	Catalog     *CatalogService
	ReviewRepo  *repository.ReviewRepository
	CourseRepo  *repository.CourseRepository
	PaymentRepo *repository.PaymentRepository

	mu     sync.RWMutex
	policy config.ReviewConfig
}

func NewReviewService(
	db *gorm.DB,
	catalog *CatalogService,
	reviewRepo *repository.ReviewRepository,
	courseRepo *repository.CourseRepository,
	paymentRepo *repository.PaymentRepository,
	policy config.ReviewConfig,
) *ReviewService {
	s := &ReviewService{
		DB:          db,
		Catalog:     catalog,
		ReviewRepo:  reviewRepo,
		CourseRepo:  courseRepo,
		PaymentRepo: paymentRepo,
	}
	s.SetPolicy(policy)
	return s
}

// SetPolicy 配置热更新回调
func (s *ReviewService) SetPolicy(policy config.ReviewConfig) {
	if policy.HelpfulThreshold <= 0 {
		policy.HelpfulThreshold = 3
	}
	s.mu.Lock()
	s.policy = policy
	s.mu.Unlock()
	logger.Log.Info("Review policy applied",
		zap.Bool("autoApprove", policy.AutoApprove),
		zap.Int("helpfulThreshold", policy.HelpfulThreshold))
}

func (s *ReviewService) Policy() config.ReviewConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// recompute 在同一事务内刷新课程评分
func (s *ReviewService) recompute(tx *gorm.DB, courseID uint) error {
	avg, total, err := s.ReviewRepo.WithTx(tx).Aggregate(courseID)
	if err != nil {
		return err
	}
	return s.CourseRepo.WithTx(tx).UpdateRating(courseID, avg, total)
}

// Save 每个学员对同一课程只有一条评价，再次提交即修改
func (s *ReviewService) Save(ctx context.Context, studentID uint, slug string, in *ReviewInput) (*model.Review, bool, error) {
	comment, err := in.Validate()
	if err != nil {
		return nil, false, err
	}
	course, err := s.Catalog.PublishedCourse(slug)
	if err != nil {
		return nil, false, err
	}
	policy := s.Policy()

	var (
		review  *model.Review
		created bool
	)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		reviews := s.ReviewRepo.WithTx(tx)
		existing, err := reviews.FindByStudentCourse(studentID, course.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			review = &model.Review{StudentID: studentID, CourseID: course.ID}
			created = true
		case err != nil:
			return err
		default:
			review = existing
		}

		verified, err := s.PaymentRepo.WithTx(tx).HasApproved(studentID, course.ID)
		if err != nil {
			return err
		}
		review.Rating = in.Rating
		review.Title = strings.TrimSpace(in.Title)
		review.Comment = comment
		review.IsVerifiedPurchase = verified
		review.IsModerated = policy.AutoApprove

		if err := reviews.Save(review); err != nil {
			return err
		}
		return s.recompute(tx, course.ID)
	})
	if err != nil {
		return nil, false, err
	}

	action := "updated"
	if created {
		action = "created"
	}
	monitoring.ReviewsTotal.WithLabelValues(action).Inc()
	return review, created, nil
}

// Delete 作者或管理员可删除
func (s *ReviewService) Delete(userID uint, isAdmin bool, reviewID uint) error {
	review, err := s.ReviewRepo.FindByID(reviewID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrReviewNotFound
	}
	if err != nil {
		return err
	}
	if review.StudentID != userID && !isAdmin {
		return util.ErrPermissionDenied
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ReviewRepo.WithTx(tx).Delete(review); err != nil {
			return err
		}
		return s.recompute(tx, review.CourseID)
	})
	if err == nil {
		monitoring.ReviewsTotal.WithLabelValues("deleted").Inc()
	}
	return err
}

func (s *ReviewService) MarkHelpful(userID, reviewID uint) (*HelpfulResult, error) {
	review, err := s.ReviewRepo.FindByID(reviewID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !review.IsModerated) {
		return nil, util.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	if review.StudentID == userID {
		return nil, util.ErrCannotVoteOwn
	}
	threshold := s.Policy().HelpfulThreshold

	result := &HelpfulResult{}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		reviews := s.ReviewRepo.WithTx(tx)
		voted, err := reviews.HasVoted(reviewID, userID)
		if err != nil {
			return err
		}
		if voted {
			return util.ErrAlreadyVoted
		}
		if err := reviews.AddHelpfulVote(reviewID, userID); err != nil {
			return err
		}
		updated, err := reviews.FindByID(reviewID)
		if err != nil {
			return err
		}
		result.HelpfulCount = updated.HelpfulCount
		result.IsHelpful = updated.HelpfulCount >= threshold
		if result.IsHelpful != updated.IsHelpful {
			return reviews.SetHelpful(reviewID, result.IsHelpful)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ReviewService) List(slug string, f repository.ReviewFilter, page int) (*util.PageResponse, error) {
	course, err := s.Catalog.PublishedCourse(slug)
	if err != nil {
		return nil, err
	}
	reviews, total, err := s.ReviewRepo.ListPublic(course.ID, f, page, util.ReviewsPerPage)
	if err != nil {
		return nil, err
	}
	resp := util.NewPage(reviews, total, page, util.ReviewsPerPage)
	return &resp, nil
}

func (s *ReviewService) Stats(slug string) (*repository.ReviewStats, error) {
	course, err := s.Catalog.PublishedCourse(slug)
	if err != nil {
		return nil, err
	}
	return s.ReviewRepo.Stats(course.ID)
}

// Moderate 审核通过或隐藏评价，随后刷新课程评分
func (s *ReviewService) Moderate(reviewID uint, approved bool) (*model.Review, error) {
	review, err := s.ReviewRepo.FindByID(reviewID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.ReviewRepo.WithTx(tx).SetModerated(reviewID, approved); err != nil {
			return err
		}
		return s.recompute(tx, review.CourseID)
	})
	if err != nil {
		return nil, err
	}
	review.IsModerated = approved
	return review, nil
}

func (s *ReviewService) AdminList(moderated *bool, courseID uint, page int) (*util.PageResponse, error) {
	reviews, total, err := s.ReviewRepo.AdminList(moderated, courseID, page, util.AdminPaymentsPerPage)
	if err != nil {
		return nil, err
	}
	resp := util.NewPage(reviews, total, page, util.AdminPaymentsPerPage)
	return &resp, nil
}
