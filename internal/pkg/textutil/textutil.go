package textutil

import "unicode/utf8"

// Truncate cuts s to at most n runes
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Len returns the number of runes in s
func Len(s string) int {
	return utf8.RuneCountInString(s)
}
