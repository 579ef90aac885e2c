package service

import (
	"coursemart_backend/internal/model"
	"coursemart_backend/internal/repository"
)

type DashboardService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	PaymentRepo    *repository.PaymentRepository
	DashboardRepo  *repository.DashboardRepository
	Enrollments    *EnrollmentService
}

func NewDashboardService(
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	paymentRepo *repository.PaymentRepository,
	dashboardRepo *repository.DashboardRepository,
	enrollments *EnrollmentService,
) *DashboardService {
	return &DashboardService{
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		PaymentRepo:    paymentRepo,
		DashboardRepo:  dashboardRepo,
		Enrollments:    enrollments,
	}
}

type StudentDashboard struct {
	EnrolledCourses  int64            `json:"enrolledCourses"`
	CompletedCourses int64            `json:"completedCourses"`
	CompletedLessons int64            `json:"completedLessons"`
	PendingPayments  []model.Payment  `json:"pendingPayments"`
	RecentCourses    []EnrolledCourse `json:"recentCourses"`
}

const dashboardRecentCourses = 5

func (s *DashboardService) Student(studentID uint) (*StudentDashboard, error) {
	total, completed, err := s.EnrollmentRepo.CountActiveByStudent(studentID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.ProgressRepo.CountCompletedByStudent(studentID)
	if err != nil {
		return nil, err
	}
	pending, err := s.PaymentRepo.ListPendingByStudent(studentID, dashboardRecentCourses)
	if err != nil {
		return nil, err
	}
	courses, err := s.Enrollments.MyCourses(studentID)
	if err != nil {
		return nil, err
	}
	if len(courses) > dashboardRecentCourses {
		courses = courses[:dashboardRecentCourses]
	}

	return &StudentDashboard{
		EnrolledCourses:  total,
		CompletedCourses: completed,
		CompletedLessons: lessons,
		PendingPayments:  pending,
		RecentCourses:    courses,
	}, nil
}

func (s *DashboardService) Admin() (*repository.AdminOverview, error) {
	return s.DashboardRepo.AdminOverview()
}
