package summarizer

import (
	"context"
	"fmt"
	"math"
	"slices"
)

// KLSummarizer greedily builds a summary whose word distribution stays
// closest, by Kullback-Leibler divergence, to the distribution of the whole
// document.
type KLSummarizer struct{}

func NewKLSummarizer() *KLSummarizer {
	return &KLSummarizer{}
}

func (s *KLSummarizer) Summarize(ctx context.Context, input Input) ([]string, error) {
	if input.SentencesCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, input.SentencesCount)
	}

	l, err := lookupLanguage(input.Language)
	if err != nil {
		return nil, err
	}

	doc, err := parseDocument(input.Text, l)
	if err != nil {
		return nil, err
	}

	candidates := doc.candidates()
	if len(candidates) == 0 {
		return []string{}, nil
	}

	sentenceWords := make([][]string, len(candidates))
	for i, c := range candidates {
		sentenceWords[i] = c.words
	}

	order, err := selectionOrder(ctx, sentenceWords)
	if err != nil {
		return nil, err
	}

	return bestSentences(candidates, order, input.SentencesCount), nil
}

// selectionOrder returns sentence indexes in the order the greedy search picks them.
func selectionOrder(ctx context.Context, sentenceWords [][]string) ([]int, error) {
	remaining := make([]int, len(sentenceWords))
	for i := range remaining {
		remaining[i] = i
	}

	docFreq := termFrequencies(slices.Concat(sentenceWords...))
	if len(docFreq) == 0 {
		return remaining, nil
	}

	order := make([]int, 0, len(sentenceWords))
	var summary []string

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("select sentences: %w", err)
		}

		bestPos := 0
		bestKL := math.Inf(1)
		for pos, idx := range remaining {
			kl := klDivergence(jointFrequencies(sentenceWords[idx], summary), docFreq)
			if kl < bestKL {
				bestPos = pos
				bestKL = kl
			}
		}

		picked := remaining[bestPos]
		order = append(order, picked)
		summary = append(summary, sentenceWords[picked]...)
		remaining = slices.Delete(remaining, bestPos, bestPos+1)
	}

	return order, nil
}

// bestSentences keeps the count highest ranked sentences in document order.
// A sentence's rank is the number of distinct texts picked before it, so
// identical texts share the rank of the last picked copy and a re-picked
// copy ties with the next new text. Ties keep document order.
func bestSentences(candidates []sentence, order []int, count int) []string {
	rankByText := make(map[string]int, len(order))
	for _, idx := range order {
		rank := len(rankByText)
		rankByText[candidates[idx].text] = rank
	}

	indexes := make([]int, len(candidates))
	for i := range indexes {
		indexes[i] = i
	}

	slices.SortStableFunc(indexes, func(a, b int) int {
		return rankByText[candidates[a].text] - rankByText[candidates[b].text]
	})

	indexes = indexes[:min(count, len(indexes))]
	slices.Sort(indexes)

	out := make([]string, len(indexes))
	for i, idx := range indexes {
		out[i] = candidates[idx].text
	}

	return out
}

type frequency struct {
	word  string
	value float64
}

// termFrequencies maps each word to its share of all words.
func termFrequencies(words []string) map[string]float64 {
	tf := make(map[string]float64)
	if len(words) == 0 {
		return tf
	}

	total := float64(len(words))
	for _, w := range words {
		tf[w]++
	}
	for w, c := range tf {
		tf[w] = c / total
	}

	return tf
}

// jointFrequencies is the word distribution of a sentence merged with the
// current summary, in first-appearance order.
func jointFrequencies(sentenceWords []string, summary []string) []frequency {
	total := float64(len(sentenceWords) + len(summary))
	if total == 0 {
		return nil
	}

	pos := make(map[string]int)
	var joint []frequency

	for _, words := range [][]string{sentenceWords, summary} {
		for _, w := range words {
			i, ok := pos[w]
			if !ok {
				i = len(joint)
				pos[w] = i
				joint = append(joint, frequency{word: w})
			}
			joint[i].value++
		}
	}

	for i := range joint {
		joint[i].value /= total
	}

	return joint
}

// klDivergence sums p_doc * ln(p_doc / p_joint) over the joint words known to the document.
func klDivergence(joint []frequency, docFreq map[string]float64) float64 {
	sum := 0.0
	for _, f := range joint {
		p, ok := docFreq[f.word]
		if !ok || p == 0 {
			continue
		}
		sum += p * math.Log(p/f.value)
	}

	return sum
}
