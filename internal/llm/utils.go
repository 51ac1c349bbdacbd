package llm

import "unicode/utf8"

// truncateUTF8 returns the longest prefix of s that is at most n bytes and valid UTF-8 at the cut.
func truncateUTF8(s string, n int) string {
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
