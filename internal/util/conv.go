package util

import "strconv"

// MustParseUint 将字符串转换为无符号整数，解析失败时返回 0
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// ParsePage 页码从 1 开始，非法值回退到 1
func ParsePage(s string) int {
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
