package util

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ValidateMimeType 深度校验文件 MIME 类型
// allowedTypes: 允许的 MIME 前缀或完整类型，如 "image/", "video/"
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// HasAllowedExtension 扩展名白名单校验（不区分大小写）
func HasAllowedExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// ObjectName 生成存储对象名：folder/20060102/uuid.ext
func ObjectName(folder, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return fmt.Sprintf("%s/%s/%s%s", folder, time.Now().Format("20060102"), uuid.New().String(), ext)
}
