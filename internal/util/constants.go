package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

// 分页大小
const (
	CoursesPerPage       = 12
	PaymentsPerPage      = 10
	AdminPaymentsPerPage = 20
	ReviewsPerPage       = 10
)

var (
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}
	AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
)
