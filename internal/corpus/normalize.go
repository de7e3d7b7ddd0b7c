package corpus

import (
	"strings"

	"golang.org/x/net/html"
)

// HTMLToText strips markup from a document and collapses whitespace.
// Script, style and head subtrees are dropped entirely. Input that is not
// HTML passes through with whitespace normalized.
func HTMLToText(raw string) string {
	if !strings.Contains(raw, "<") {
		return collapseWhitespace(raw)
	}

	var b strings.Builder
	b.Grow(len(raw) / 2)

	z := html.NewTokenizer(strings.NewReader(raw))
	skipDepth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return collapseWhitespace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if skippedTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func skippedTag(name string) bool {
	switch name {
	case "script", "style", "head":
		return true
	}
	return false
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExtractSnippet returns a window of text centered on the first keyword hit:
// up to 200 characters of lead-in and 400 after the hit. When no keyword
// matches, the head of the text is returned, capped at maxLen.
func ExtractSnippet(text string, keywords []string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 600
	}
	textLower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		idx := strings.Index(textLower, strings.ToLower(kw))
		if idx < 0 {
			continue
		}
		start := idx - 200
		if start < 0 {
			start = 0
		}
		end := idx + 400
		if end > len(text) {
			end = len(text)
		}
		return text[start:end]
	}
	if len(text) > maxLen {
		return text[:maxLen]
	}
	return text
}
