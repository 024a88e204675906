package usecase

import "strings"

// DefaultTriggerKeyword gates which messages are relayed
const DefaultTriggerKeyword = "gemini"

// KeywordFilter decides whether a message should be relayed
type KeywordFilter struct {
	keyword string
}

// NewKeywordFilter creates a filter for keyword (case-insensitive).
// An empty keyword falls back to DefaultTriggerKeyword.
func NewKeywordFilter(keyword string) *KeywordFilter {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		keyword = DefaultTriggerKeyword
	}
	return &KeywordFilter{keyword: strings.ToLower(keyword)}
}

// Keyword returns the normalized trigger keyword
func (f *KeywordFilter) Keyword() string {
	return f.keyword
}

// ShouldRespond reports whether text contains the trigger keyword
func (f *KeywordFilter) ShouldRespond(text string) bool {
	return strings.Contains(strings.ToLower(text), f.keyword)
}
