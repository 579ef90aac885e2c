package service

import (
	"bytes"
	"context"
	"coursemart_backend/internal/util"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

const (
	screenshotMaxSide = 1600
	thumbnailWidth    = 800
	thumbnailHeight   = 450
	jpegQuality       = 85
)

// MediaService 上传前处理图片和视频
type MediaService struct {
	Storage *StorageService
	// ProbeVideo 可替换，测试环境没有 ffprobe
	ProbeVideo func(path string) (*util.VideoInfo, error)
}

func NewMediaService(storage *StorageService) *MediaService {
	return &MediaService{Storage: storage, ProbeVideo: util.ProbeVideo}
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidImage, err)
	}
	return img, nil
}

func encodeJPEG(img image.Image) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf, nil
}

// NormalizeScreenshot 纠正方向，长边不超过 1600，统一转 JPEG
func NormalizeScreenshot(r io.Reader) (*bytes.Buffer, error) {
	img, err := decodeImage(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() > screenshotMaxSide || b.Dy() > screenshotMaxSide {
		img = imaging.Fit(img, screenshotMaxSide, screenshotMaxSide, imaging.Lanczos)
	}
	return encodeJPEG(img)
}

// NormalizeThumbnail 居中裁剪为 16:9 封面
func NormalizeThumbnail(r io.Reader) (*bytes.Buffer, error) {
	img, err := decodeImage(r)
	if err != nil {
		return nil, err
	}
	return encodeJPEG(imaging.Fill(img, thumbnailWidth, thumbnailHeight, imaging.Center, imaging.Lanczos))
}

func (s *MediaService) uploadImage(ctx context.Context, folder string, fh *multipart.FileHeader, normalize func(io.Reader) (*bytes.Buffer, error)) (string, error) {
	if fh == nil {
		return "", util.ErrScreenshotRequired
	}
	if !util.HasAllowedExtension(fh.Filename, util.AllowedImageExtensions) {
		return "", util.ErrInvalidImage
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := util.ValidateMimeType(f, []string{util.MimeImage}); err != nil {
		return "", util.ErrInvalidImage
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	buf, err := normalize(f)
	if err != nil {
		return "", err
	}
	objectName := util.ObjectName(folder, "image.jpg")
	return s.Storage.Upload(ctx, objectName, buf, int64(buf.Len()), "image/jpeg")
}

func (s *MediaService) UploadScreenshot(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	return s.uploadImage(ctx, "payment_screenshots", fh, NormalizeScreenshot)
}

func (s *MediaService) UploadThumbnail(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	return s.uploadImage(ctx, "course_thumbnails", fh, NormalizeThumbnail)
}

// UploadLessonVideo 先落临时文件，用 ffprobe 读取时长（分钟）后再上传
func (s *MediaService) UploadLessonVideo(ctx context.Context, fh *multipart.FileHeader) (url string, minutes int, err error) {
	if !util.HasAllowedExtension(fh.Filename, util.AllowedVideoExtensions) {
		return "", 0, util.ErrInvalidVideo
	}

	src, err := fh.Open()
	if err != nil {
		return "", 0, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeVideo, util.MimeOctetStream})
	if err != nil {
		return "", 0, util.ErrInvalidVideo
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", 0, err
	}

	ext := filepath.Ext(fh.Filename)
	tmp, err := os.CreateTemp("", "lesson-*"+ext)
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return "", 0, err
	}
	tmp.Close()

	info, err := s.ProbeVideo(tmp.Name())
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", util.ErrInvalidVideo, err)
	}

	url, err = s.Storage.UploadFile(ctx, util.ObjectName("lesson_videos", fh.Filename), tmp.Name(), mimeType)
	if err != nil {
		return "", 0, err
	}
	return url, info.Minutes(), nil
}
