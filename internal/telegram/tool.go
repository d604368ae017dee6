package telegram

import "strings"

// EscapeMarkdown 转义 Markdown 消息中的特殊字符，避免标的名破坏格式
func EscapeMarkdown(input string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"`", "\\`",
		"[", "\\[",
	)
	return replacer.Replace(input)
}
