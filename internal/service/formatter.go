package service

import (
	"fmt"
	"strings"

	"github.com/kitbuilder587/research-mcp/internal/search"
)

const (
	contentExcerptLimit = 300
	noTitlePlaceholder  = "No Title"
	noURLPlaceholder    = "no url"
	formatFailedMessage = "Error: formatting failed"
)

// FormatCombined рендерит объединенный результат в читаемый markdown.
// Никогда не возвращает ошибку - в худшем случае фиксированное сообщение.
func FormatCombined(combined *search.CombinedResponse) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = formatFailedMessage
		}
	}()

	if combined == nil {
		return formatFailedMessage
	}

	var sb strings.Builder
	sb.WriteString("## Research Results\n")

	if combined.Answer != "" {
		sb.WriteString(fmt.Sprintf("\n### Summary\n%s\n", combined.Answer))
	}

	sb.WriteString("\n### Detailed Sources\n")
	for i, r := range combined.Results {
		title := r.Title
		if title == "" {
			title = noTitlePlaceholder
		}
		url := r.URL
		if url == "" {
			url = noURLPlaceholder
		}

		sb.WriteString(fmt.Sprintf("%d. [%s](%s)\n   - %s\n", i+1, title, url, excerpt(r.Content)))
	}

	return sb.String()
}

// FormatError превращает ошибку ядра в плоский текст для внешней границы
func FormatError(err error) string {
	if err == nil {
		return formatFailedMessage
	}
	return fmt.Sprintf("Error performing research: %s", err.Error())
}

func excerpt(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return "No content available"
	}
	if len(content) <= contentExcerptLimit {
		return content
	}
	return content[:contentExcerptLimit] + "..."
}
