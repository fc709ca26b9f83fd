package markdown

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// DefaultExcerptLength is the rune budget for document excerpts.
const DefaultExcerptLength = 200

// Excerpt extracts up to maxRunes of plain text from an HTML fragment,
// never splitting inside a tag. Whitespace runs collapse to single spaces.
func Excerpt(htmlContent string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultExcerptLength
	}

	text := StripTags(htmlContent)
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	cut := runes[:maxRunes]
	// Back up to the last space so the excerpt does not end mid-word.
	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + "…"
}

// StripTags returns the text content of an HTML fragment with whitespace
// collapsed. Script and style bodies are skipped.
func StripTags(htmlContent string) string {
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(htmlContent))
	skipDepth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseSpace(sb.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				sb.Write(z.Text())
				sb.WriteByte(' ')
			}
		}
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
