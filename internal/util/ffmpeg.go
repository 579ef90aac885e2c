package util

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoInfo 课时视频的元数据
type VideoInfo struct {
	Duration float64 `json:"duration"` // 秒
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Format   string  `json:"format"`
	Size     int64   `json:"size"`
}

// Minutes 课时时长按分钟向上取整，至少 1 分钟
func (v *VideoInfo) Minutes() int {
	if v.Duration <= 0 {
		return 0
	}
	m := int(math.Ceil(v.Duration / 60))
	if m < 1 {
		m = 1
	}
	return m
}

// ProbeVideo 调用 ffprobe 读取视频时长和分辨率
func ProbeVideo(videoPath string) (*VideoInfo, error) {
	fileInfo, err := os.Stat(videoPath)
	if err != nil {
		return nil, fmt.Errorf("video file not found: %w", err)
	}

	jsonOutput, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}

	return parseProbeOutput(jsonOutput, fileInfo.Size())
}

func parseProbeOutput(jsonOutput string, fallbackSize int64) (*VideoInfo, error) {
	var result struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
			Size     string `json:"size"`
			Format   string `json:"format_name"`
		} `json:"format"`
	}

	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("parse probe output: %w", err)
	}

	info := &VideoInfo{Format: "unknown", Size: fallbackSize}
	for _, stream := range result.Streams {
		if stream.CodecType == "video" {
			info.Width = stream.Width
			info.Height = stream.Height
			break
		}
	}

	if d, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	if s, err := strconv.ParseInt(result.Format.Size, 10, 64); err == nil {
		info.Size = s
	}
	if result.Format.Format != "" {
		info.Format = strings.Split(result.Format.Format, ",")[0]
	}

	return info, nil
}
