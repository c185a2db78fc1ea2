package telegram

import (
	"strings"
	"unicode/utf8"
)

// Telegram limits, counted in characters.
const (
	MaxMessageLength = 4096
	MaxCaptionLength = 1024
)

const reservedChars = `\-_[]()~>#+=|{}.!`

var (
	markdownEscaper   *strings.Replacer
	markdownUnescaper *strings.Replacer
)

func init() {
	escapes := make([]string, 0, 2*len(reservedChars))
	unescapes := make([]string, 0, 2*len(reservedChars))
	for _, c := range reservedChars {
		escapes = append(escapes, string(c), `\`+string(c))
		unescapes = append(unescapes, `\`+string(c), string(c))
	}
	markdownEscaper = strings.NewReplacer(escapes...)
	markdownUnescaper = strings.NewReplacer(unescapes...)
}

// EscapeMarkdown backslash-escapes the MarkdownV2 metacharacters that appear
// literally in free text, the backslash included. Bold and code markers are
// left alone so model output keeps its emphasis.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// UnescapeMarkdown reverses EscapeMarkdown.
func UnescapeMarkdown(text string) string {
	return markdownUnescaper.Replace(text)
}

// EscapeMarkdownLimit escapes text and cuts it so the escaped result holds at
// most limit characters. A cut never splits an escape sequence and ends in "…".
func EscapeMarkdownLimit(text string, limit int) string {
	escaped := EscapeMarkdown(text)
	if utf8.RuneCountInString(escaped) <= limit {
		return escaped
	}

	var b strings.Builder
	n := 0
	for _, r := range text {
		piece := EscapeMarkdown(string(r))
		width := utf8.RuneCountInString(piece)
		if n+width > limit-1 {
			break
		}
		b.WriteString(piece)
		n += width
	}
	b.WriteString("…")
	return b.String()
}
