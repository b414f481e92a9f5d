package util

import (
	"regexp"
)

var (
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_\-]{3,32}$`)
)

// IsValidEmail 判断是否为合法邮箱
func IsValidEmail(s string) bool {
	return emailRegexp.MatchString(s)
}

// IsValidUsername 判断是否为合法用户名
// 3-32 位，仅允许字母数字下划线和连字符
func IsValidUsername(s string) bool {
	return usernameRegexp.MatchString(s)
}
