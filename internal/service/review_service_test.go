package service

import (
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/repository"
	"coursemart_backend/internal/util"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodComment = "Clear explanations and useful exercises."

func TestReviewInputValidate(t *testing.T) {
	cases := []struct {
		name string
		in   ReviewInput
		err  error
	}{
		{"ok", ReviewInput{Rating: 5, Comment: "  " + goodComment + "  "}, nil},
		{"rating too low", ReviewInput{Rating: 0, Comment: goodComment}, util.ErrInvalidRating},
		{"rating too high", ReviewInput{Rating: 6, Comment: goodComment}, util.ErrInvalidRating},
		{"short", ReviewInput{Rating: 3, Comment: "   too short  "}, util.ErrCommentTooShort},
		{"long", ReviewInput{Rating: 3, Comment: strings.Repeat("a", 1001)}, util.ErrCommentTooLong},
		{"banned", ReviewInput{Rating: 3, Comment: "Great course, check my Promotion link"}, util.ErrInappropriate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			comment, err := tc.in.Validate()
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, goodComment, comment)
		})
	}
}

func TestReviewSaveRecomputesRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Statistics", "20", 1)

	payment, err := f.payments.Submit(ctx, f.student.ID, course.Slug, &PaymentInput{PaymentMethodID: f.method.ID}, nil)
	require.NoError(t, err)
	_, err = f.payments.Approve(ctx, f.admin.ID, payment.ID, "")
	require.NoError(t, err)

	r1, created, err := f.reviews.Save(ctx, f.student.ID, course.Slug, &ReviewInput{Rating: 5, Comment: goodComment})
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, r1.IsVerifiedPurchase)
	assert.True(t, r1.IsModerated)

	_, _, err = f.reviews.Save(ctx, f.instructor.ID, course.Slug, &ReviewInput{Rating: 4, Comment: goodComment})
	require.NoError(t, err)

	c := f.courseRow(t, course.ID)
	assert.Equal(t, "4.50", c.Rating.StringFixed(2))
	assert.Equal(t, 2, c.TotalRatings)

	r2, created, err := f.reviews.Save(ctx, f.student.ID, course.Slug, &ReviewInput{Rating: 2, Comment: goodComment})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, r1.ID, r2.ID)

	c = f.courseRow(t, course.ID)
	assert.Equal(t, "3.00", c.Rating.StringFixed(2))
	assert.Equal(t, 2, c.TotalRatings)

	stats, err := f.reviews.Stats(course.Slug)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Verified)
	assert.Equal(t, int64(1), stats.Distribution[2])
	assert.Equal(t, int64(1), stats.Distribution[4])

	page, err := f.reviews.List(course.Slug, repository.ReviewFilter{VerifiedOnly: true}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	require.NoError(t, f.reviews.Delete(f.student.ID, false, r1.ID))
	c = f.courseRow(t, course.ID)
	assert.Equal(t, "4.00", c.Rating.StringFixed(2))
	assert.Equal(t, 1, c.TotalRatings)
}

func TestReviewModerationPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Moderated", "20", 1)
	f.reviews.SetPolicy(config.ReviewConfig{AutoApprove: false})
	assert.Equal(t, 3, f.reviews.Policy().HelpfulThreshold)

	review, _, err := f.reviews.Save(ctx, f.student.ID, course.Slug, &ReviewInput{Rating: 1, Comment: goodComment})
	require.NoError(t, err)
	assert.False(t, review.IsModerated)

	c := f.courseRow(t, course.ID)
	assert.Equal(t, 0, c.TotalRatings)
	assert.True(t, c.Rating.IsZero())

	pending := false
	list, err := f.reviews.AdminList(&pending, course.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	_, err = f.reviews.MarkHelpful(f.admin.ID, review.ID)
	assert.ErrorIs(t, err, util.ErrReviewNotFound)

	_, err = f.reviews.Moderate(review.ID, true)
	require.NoError(t, err)
	c = f.courseRow(t, course.ID)
	assert.Equal(t, 1, c.TotalRatings)
	assert.Equal(t, "1.00", c.Rating.StringFixed(2))

	_, err = f.reviews.Moderate(review.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 0, f.courseRow(t, course.ID).TotalRatings)
}

func TestReviewHelpfulVotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Helpful", "20", 1)

	review, _, err := f.reviews.Save(ctx, f.student.ID, course.Slug, &ReviewInput{Rating: 4, Comment: goodComment})
	require.NoError(t, err)

	_, err = f.reviews.MarkHelpful(f.student.ID, review.ID)
	assert.ErrorIs(t, err, util.ErrCannotVoteOwn)

	res, err := f.reviews.MarkHelpful(f.admin.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.HelpfulCount)
	assert.False(t, res.IsHelpful)

	_, err = f.reviews.MarkHelpful(f.admin.ID, review.ID)
	assert.ErrorIs(t, err, util.ErrAlreadyVoted)

	res, err = f.reviews.MarkHelpful(f.instructor.ID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.HelpfulCount)
	assert.True(t, res.IsHelpful)

	page, err := f.reviews.List(course.Slug, repository.ReviewFilter{HelpfulOnly: true}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestReviewDeletePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := f.course(t, "Permissions", "20", 1)

	review, _, err := f.reviews.Save(ctx, f.student.ID, course.Slug, &ReviewInput{Rating: 4, Comment: goodComment})
	require.NoError(t, err)

	assert.ErrorIs(t, f.reviews.Delete(f.instructor.ID, false, review.ID), util.ErrPermissionDenied)
	require.NoError(t, f.reviews.Delete(f.admin.ID, true, review.ID))
	assert.ErrorIs(t, f.reviews.Delete(f.admin.ID, true, review.ID), util.ErrReviewNotFound)
}
