package service

import (
	"bytes"
	"context"
	"coursemart_backend/internal/util"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScreenshotDownscales(t *testing.T) {
	buf, err := NormalizeScreenshot(bytes.NewReader(pngBytes(t, 2400, 1200)))
	require.NoError(t, err)

	img, err := jpeg.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 1600, img.Bounds().Dx())
	assert.Equal(t, 800, img.Bounds().Dy())
}

func TestNormalizeScreenshotKeepsSmallImages(t *testing.T) {
	buf, err := NormalizeScreenshot(bytes.NewReader(pngBytes(t, 300, 200)))
	require.NoError(t, err)

	img, err := jpeg.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
}

func TestNormalizeThumbnailCrops(t *testing.T) {
	buf, err := NormalizeThumbnail(bytes.NewReader(pngBytes(t, 500, 500)))
	require.NoError(t, err)

	img, err := jpeg.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 450, img.Bounds().Dy())
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	_, err := NormalizeScreenshot(bytes.NewReader([]byte("definitely not an image")))
	assert.ErrorIs(t, err, util.ErrInvalidImage)
}

func TestStorageDeleteURLIgnoresForeignURLs(t *testing.T) {
	dir := t.TempDir()
	s := &StorageService{Provider: &LocalStorageProvider{Root: dir}}

	url, err := s.Upload(context.Background(), "a/b.txt", bytes.NewReader([]byte("x")), 1, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/a/b.txt", url)

	require.NoError(t, s.DeleteURL(context.Background(), "https://cdn.example.com/a/b.txt"))
	require.NoError(t, s.DeleteURL(context.Background(), url))
	require.NoError(t, s.DeleteURL(context.Background(), url))
}
