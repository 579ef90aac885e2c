package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// 自动生成的 slug 需给 "-2"、"-3" 后缀留出空间
const maxSlugLen = 200

var reSlugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify 生成 URL 友好的 slug：去掉变音符号（é → e），非字母数字压缩为 "-"
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	s = reSlugNonAlnum.ReplaceAllString(b.String(), "-")
	s = strings.Trim(s, "-")
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}
