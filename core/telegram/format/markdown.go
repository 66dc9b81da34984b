// Package format renders text for Telegram parse modes.
package format

import (
	"regexp"
	"strings"
)

const mdV2Specials = "_*[]()~`>#+-=|{}.!\\"

var mdV2Re = regexp.MustCompile("([" + classEscape(mdV2Specials) + "])")

// classEscape backslash-escapes every rune so none of them forms a range inside [...].
func classEscape(chars string) string {
	var b strings.Builder
	for _, r := range chars {
		b.WriteByte('\\')
		b.WriteRune(r)
	}
	return b.String()
}

// EscapeMarkdownV2 escapes every character MarkdownV2 treats as markup.
func EscapeMarkdownV2(text string) string {
	return mdV2Re.ReplaceAllString(text, `\$1`)
}

var codeReplacer = strings.NewReplacer("\\", "\\\\", "`", "\\`")

// Code wraps text in a MarkdownV2 inline code span, which Telegram clients copy on tap.
func Code(text string) string {
	return "`" + codeReplacer.Replace(text) + "`"
}
