package service

import (
	"context"
	"coursemart_backend/internal/config"
	"coursemart_backend/internal/util"
	"coursemart_backend/pkg/logger"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 截图、封面、课时视频的对象存储
type StorageProvider interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error)
	Delete(ctx context.Context, objectName string) error
	GetURL(objectName string) string
}

// LocalStorageProvider 写入 storage.local_path，由 /uploads 静态路由提供访问
type LocalStorageProvider struct {
	Root string
}

func (p *LocalStorageProvider) create(objectName string) (*os.File, error) {
	dst := filepath.Join(p.Root, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, err
	}
	return os.Create(dst)
}

func (p *LocalStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	out, err := p.create(objectName)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *LocalStorageProvider) UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()
	return p.Upload(ctx, objectName, src, -1, contentType)
}

func (p *LocalStorageProvider) Delete(ctx context.Context, objectName string) error {
	err := os.Remove(filepath.Join(p.Root, filepath.FromSlash(objectName)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (p *LocalStorageProvider) GetURL(objectName string) string {
	return "/uploads/" + objectName
}

type MinioStorageProvider struct {
	Bucket string
	Client *minio.Client
}

func NewMinioStorageProvider(ctx context.Context, cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &MinioStorageProvider{Bucket: cfg.MinioBucket, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *MinioStorageProvider) UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error) {
	_, err := p.Client.FPutObject(ctx, p.Bucket, objectName, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, objectName string) error {
	return p.Client.RemoveObject(ctx, p.Bucket, objectName, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(objectName string) string {
	return "/" + p.Bucket + "/" + objectName
}

type OSSStorageProvider struct {
	Endpoint string
	Bucket   *oss.Bucket
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Endpoint: cfg.OSSEndpoint, Bucket: bucket}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if err := p.Bucket.PutObject(objectName, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *OSSStorageProvider) UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error) {
	if err := p.Bucket.PutObjectFromFile(objectName, localPath, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(objectName), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, objectName string) error {
	return p.Bucket.DeleteObject(objectName)
}

func (p *OSSStorageProvider) GetURL(objectName string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Bucket.BucketName, p.Endpoint, objectName)
}

type StorageService struct {
	Provider StorageProvider
}

// NewStorageService 远程存储初始化失败时回退到本地磁盘
func NewStorageService(cfg *config.Config) *StorageService {
	var (
		provider StorageProvider
		err      error
	)
	switch cfg.Storage.Type {
	case util.StorageMinio:
		provider, err = NewMinioStorageProvider(context.Background(), &cfg.Storage)
	case util.StorageOSS:
		provider, err = NewOSSStorageProvider(&cfg.Storage)
	}
	if err != nil {
		logger.Log.Warn("Remote storage unavailable, falling back to local disk",
			zap.String("type", cfg.Storage.Type),
			zap.Error(err))
		provider = nil
	}

	if provider == nil {
		provider = &LocalStorageProvider{Root: cfg.Storage.LocalPath}
	}

	return &StorageService{Provider: provider}
}

func (s *StorageService) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Upload(ctx, objectName, reader, size, contentType)
}

func (s *StorageService) UploadFile(ctx context.Context, objectName string, localPath string, contentType string) (string, error) {
	return s.Provider.UploadFile(ctx, objectName, localPath, contentType)
}

// DeleteURL 根据 GetURL 返回的地址删除对象，非本服务生成的地址忽略
func (s *StorageService) DeleteURL(ctx context.Context, url string) error {
	prefix := s.Provider.GetURL("")
	if url == "" || !strings.HasPrefix(url, prefix) {
		return nil
	}
	return s.Provider.Delete(ctx, strings.TrimPrefix(url, prefix))
}
