package common

import "unicode/utf8"

// TruncateUTF8 returns s cut to at most n bytes without splitting a
// multi-byte character.
func TruncateUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
