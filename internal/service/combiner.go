package service

import (
	"errors"
	"strings"

	"github.com/kitbuilder587/research-mcp/internal/search"
)

var (
	ErrInsufficientResults = errors.New("not enough unique results")
	ErrNoValidResults      = errors.New("no valid results")
)

// Combine сливает результаты нескольких поисков в один.
// URL - ключ дедупликации, выигрывает первое вхождение, порядок сохраняется.
// maxResults > 0 ограничивает размер объединения, minResults > 0 задает
// минимально приемлемое число уникальных результатов.
func Combine(payloads []*search.Response, minResults, maxResults int) (*search.CombinedResponse, error) {
	seen := make(map[string]bool)
	var combined []search.Result
	var answers []string

	for _, payload := range payloads {
		// битый payload пропускаем, не валимся
		if payload == nil || payload.Results == nil {
			continue
		}

		for _, r := range payload.Results {
			if maxResults > 0 && len(combined) >= maxResults {
				break
			}
			if r.URL == "" || seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			combined = append(combined, r)
		}

		if answer := strings.TrimSpace(payload.Answer); answer != "" {
			answers = append(answers, answer)
		}
	}

	if len(combined) == 0 {
		return nil, ErrNoValidResults
	}
	if minResults > 0 && len(combined) < minResults {
		return nil, ErrInsufficientResults
	}

	return &search.CombinedResponse{
		Results: combined,
		Answer:  strings.Join(answers, "\n\n"),
	}, nil
}
