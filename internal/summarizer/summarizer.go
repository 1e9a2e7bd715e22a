package summarizer

import (
	"context"
	"errors"
)

const (
	// DefaultLanguage is the language used when Input.Language is empty.
	DefaultLanguage = "english"
	// DefaultSentencesCount is the summary length served over HTTP.
	DefaultSentencesCount = 3
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrInvalidCount        = errors.New("sentences count must be positive")
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the plain text to summarise.
	Text string
	// Language selects tokenization rules, e.g. "english".
	Language string
	// SentencesCount is the maximum number of sentences to select.
	SentencesCount int
}

// Summarizer selects representative sentences from a text.
// Sentences are returned in document order.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) ([]string, error)
}
