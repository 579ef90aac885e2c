package controller

import (
	"coursemart_backend/internal/util"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{util.ErrInvalidCredential, http.StatusUnauthorized},

	{util.ErrPermissionDenied, http.StatusForbidden},
	{util.ErrAccountDisabled, http.StatusForbidden},
	{util.ErrNotEnrolled, http.StatusForbidden},
	{util.ErrCannotVoteOwn, http.StatusForbidden},

	{util.ErrUserNotFound, http.StatusNotFound},
	{util.ErrCategoryNotFound, http.StatusNotFound},
	{util.ErrCourseNotFound, http.StatusNotFound},
	{util.ErrLessonNotFound, http.StatusNotFound},
	{util.ErrEnrollmentNotFound, http.StatusNotFound},
	{util.ErrReviewNotFound, http.StatusNotFound},
	{util.ErrDiscountNotFound, http.StatusNotFound},
	{util.ErrPaymentNotFound, http.StatusNotFound},
	{util.ErrPaymentMethodNotFound, http.StatusNotFound},
	{util.ErrBannerNotFound, http.StatusNotFound},

	{util.ErrEmailRegistered, http.StatusConflict},
	{util.ErrSlugTaken, http.StatusConflict},
	{util.ErrCategoryInUse, http.StatusConflict},
	{util.ErrAlreadyEnrolled, http.StatusConflict},
	{util.ErrAlreadyVoted, http.StatusConflict},
	{util.ErrPaymentNotPending, http.StatusConflict},
	{util.ErrPendingPaymentExists, http.StatusConflict},

	{util.ErrPaidCourse, http.StatusBadRequest},
	{util.ErrFreeCourse, http.StatusBadRequest},
	{util.ErrInvalidPrice, http.StatusBadRequest},
	{util.ErrInvalidVideo, http.StatusBadRequest},
	{util.ErrInvalidRating, http.StatusBadRequest},
	{util.ErrCommentTooShort, http.StatusBadRequest},
	{util.ErrCommentTooLong, http.StatusBadRequest},
	{util.ErrInappropriate, http.StatusBadRequest},
	{util.ErrInvalidDiscount, http.StatusBadRequest},
	{util.ErrInvalidDiscountWin, http.StatusBadRequest},
	{util.ErrPaymentMethodInactive, http.StatusBadRequest},
	{util.ErrScreenshotRequired, http.StatusBadRequest},
	{util.ErrInvalidImage, http.StatusBadRequest},
	{util.ErrInvalidPaymentMethod, http.StatusBadRequest},
	{util.ErrInvalidBannerWindow, http.StatusBadRequest},
}

// respondError 业务错误映射为对应状态码，其余记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			util.Error(ctx, e.status, e.err.Error())
			return
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.NotFound(ctx)
		return
	}
	util.LogInternalError(ctx, err)
}

// pathID 解析路径参数中的 ID，非法时直接返回 400
func pathID(ctx *gin.Context, name string) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}

func currentUser(ctx *gin.Context) *util.Claims {
	return util.GetUserFromContext(ctx)
}
