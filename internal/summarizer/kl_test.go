package summarizer_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubsafe/internal/summarizer"
)

const review = "The bouncer was rude to every woman in the queue. " +
	"Drinks were cheap. " +
	"The music was loud and the dance floor was packed all night. " +
	"A man kept grabbing women on the dance floor and the bouncer did nothing. " +
	"We left at three. " +
	"The bar staff ignored the women who complained about the man."

func summarize(t *testing.T, text string, count int) []string {
	t.Helper()

	got, err := summarizer.NewKLSummarizer().Summarize(context.Background(), summarizer.Input{
		Text:           text,
		Language:       summarizer.DefaultLanguage,
		SentencesCount: count,
	})
	require.NoError(t, err)

	return got
}

func TestKLSummarizerSelectsSentencesInDocumentOrder(t *testing.T) {
	got := summarize(t, review, 3)

	assert.Equal(t, []string{
		"Drinks were cheap.",
		"We left at three.",
		"The bar staff ignored the women who complained about the man.",
	}, got)
}

func TestKLSummarizerReturnsAllSentencesOfShortText(t *testing.T) {
	got := summarize(t, "Great night out. Friendly staff.", 3)

	assert.Equal(t, []string{"Great night out.", "Friendly staff."}, got)
}

func TestKLSummarizerNeverExceedsCount(t *testing.T) {
	for count := 1; count <= 6; count++ {
		got := summarize(t, review, count)

		assert.Len(t, got, count)
		for _, s := range got {
			assert.Contains(t, review, s)
		}
	}
}

func TestKLSummarizerIsDeterministic(t *testing.T) {
	first := summarize(t, review, 3)
	for range 5 {
		assert.Equal(t, first, summarize(t, review, 3))
	}
}

func TestKLSummarizerWhitespaceOnly(t *testing.T) {
	assert.Empty(t, summarize(t, " \n\t ", 3))
}

func TestKLSummarizerSkipsHeadings(t *testing.T) {
	text := "SATURDAY NIGHT\nThe queue moved fast. The DJ was excellent.\n\nVERDICT\nWould go again."

	got := summarize(t, text, 5)

	assert.Equal(t, []string{
		"The queue moved fast.",
		"The DJ was excellent.",
		"Would go again.",
	}, got)
}

func TestKLSummarizerSentencesWithoutWords(t *testing.T) {
	assert.Equal(t, []string{"42"}, summarize(t, "42", 3))
}

func TestKLSummarizerDefaultsLanguage(t *testing.T) {
	got, err := summarizer.NewKLSummarizer().Summarize(context.Background(), summarizer.Input{
		Text:           review,
		SentencesCount: 3,
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestKLSummarizerUnsupportedLanguage(t *testing.T) {
	_, err := summarizer.NewKLSummarizer().Summarize(context.Background(), summarizer.Input{
		Text:           review,
		Language:       "klingon",
		SentencesCount: 3,
	})
	require.ErrorIs(t, err, summarizer.ErrUnsupportedLanguage)
}

func TestKLSummarizerInvalidCount(t *testing.T) {
	_, err := summarizer.NewKLSummarizer().Summarize(context.Background(), summarizer.Input{
		Text:           review,
		SentencesCount: 0,
	})
	require.ErrorIs(t, err, summarizer.ErrInvalidCount)
}

func TestKLSummarizerCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := summarizer.NewKLSummarizer().Summarize(ctx, summarizer.Input{
		Text:           review,
		SentencesCount: 3,
	})
	require.ErrorIs(t, err, context.Canceled)
}
