package search

// TopicConfig - настройки поиска для одной тематики при fan-out.
// Label добавляется к запросу, остальное уходит в Request как есть.
type TopicConfig struct {
	Label         string
	SearchDepth   string
	Topic         string
	Days          int
	MaxResults    int
	IncludeAnswer bool
}

// DefaultTopicConfigs - тематики для comprehensive-режима
func DefaultTopicConfigs() []TopicConfig {
	return []TopicConfig{
		{Label: "business", SearchDepth: "advanced", Topic: "general", Days: 3, MaxResults: 12, IncludeAnswer: true},
		{Label: "news", SearchDepth: "basic", Topic: "news", Days: 1, MaxResults: 10, IncludeAnswer: true},
		{Label: "finance", SearchDepth: "advanced", Topic: "general", Days: 3, MaxResults: 12, IncludeAnswer: true},
		{Label: "politics", SearchDepth: "basic", Topic: "news", Days: 2, MaxResults: 10, IncludeAnswer: true},
	}
}

// Request собирает поисковый запрос по конфигу тематики
func (c TopicConfig) Request(query string) Request {
	return Request{
		Query:         query + " " + c.Label,
		SearchDepth:   c.SearchDepth,
		Topic:         c.Topic,
		Days:          c.Days,
		MaxResults:    c.MaxResults,
		IncludeAnswer: c.IncludeAnswer,
	}
}
