package util

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// StripHTML removes markup from an HTML fragment and collapses whitespace,
// matching the preview extraction used by the original share page
// StripHTML 去除 HTML 片段中的标记并合并空白字符，与分享页的摘要提取保持一致
func StripHTML(fragment string) string {
	text := tagRegex.ReplaceAllString(fragment, " ")
	text = html.UnescapeString(text)
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// TruncateRunes truncates s to at most max runes
// TruncateRunes 将字符串截断为最多 max 个字符（按 rune 计数）
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
