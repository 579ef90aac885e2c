package service

import (
	"coursemart_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteSettingsUpdateAndReset(t *testing.T) {
	f := newFixture(t)

	settings, err := f.site.Settings()
	require.NoError(t, err)
	assert.Equal(t, "AI Course Platform", settings.SiteName)

	updated, err := f.site.UpdateSettings(&SiteSettingsInput{
		SiteName:    "Course Mart",
		SocialLinks: map[string]interface{}{"twitter": "https://twitter.com/coursemart"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Course Mart", updated.SiteName)

	settings, err = f.site.Settings()
	require.NoError(t, err)
	assert.Equal(t, "Course Mart", settings.SiteName)
	assert.Equal(t, "https://twitter.com/coursemart", settings.SocialLinks["twitter"])

	_, err = f.site.ResetSettings()
	require.NoError(t, err)
	settings, err = f.site.Settings()
	require.NoError(t, err)
	assert.Equal(t, "AI Course Platform", settings.SiteName)
}

func TestBannerVisibilityWindow(t *testing.T) {
	f := newFixture(t)
	past := f.now.Add(-time.Hour)
	future := f.now.Add(time.Hour)

	_, err := f.site.CreateBanner(&BannerInput{Title: "Bad", StartDate: &future, EndDate: &past})
	assert.ErrorIs(t, err, util.ErrInvalidBannerWindow)

	second, err := f.site.CreateBanner(&BannerInput{Title: "Second", IsActive: true, DisplayOrder: 2})
	require.NoError(t, err)
	first, err := f.site.CreateBanner(&BannerInput{Title: "First", IsActive: true, DisplayOrder: 1, StartDate: &past, EndDate: &future})
	require.NoError(t, err)
	_, err = f.site.CreateBanner(&BannerInput{Title: "Upcoming", IsActive: true, StartDate: &future})
	require.NoError(t, err)
	_, err = f.site.CreateBanner(&BannerInput{Title: "Hidden", IsActive: false})
	require.NoError(t, err)

	visible, err := f.site.VisibleBanners()
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, first.ID, visible[0].ID)
	assert.Equal(t, second.ID, visible[1].ID)

	_, err = f.site.UpdateBanner(second.ID, &BannerInput{Title: "Second", IsActive: false})
	require.NoError(t, err)
	visible, err = f.site.VisibleBanners()
	require.NoError(t, err)
	assert.Len(t, visible, 1)

	all, err := f.site.AllBanners()
	require.NoError(t, err)
	assert.Len(t, all, 4)

	require.NoError(t, f.site.DeleteBanner(first.ID))
	assert.ErrorIs(t, f.site.DeleteBanner(first.ID), util.ErrBannerNotFound)
}
