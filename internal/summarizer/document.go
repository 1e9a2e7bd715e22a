package summarizer

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"mvdan.cc/xurls/v2"
)

var (
	urlRe  = xurls.Strict()
	wordRe = regexp.MustCompile(`^\p{L}[\p{L}'’-]*$`)

	englishTokenizer = sync.OnceValues(func() (sentenceTokenizer, error) {
		return english.NewSentenceTokenizer(nil)
	})
)

type sentenceTokenizer interface {
	Tokenize(text string) []*sentences.Sentence
}

type lang struct {
	tag       language.Tag
	tokenizer func() (sentenceTokenizer, error)
}

var languages = map[string]lang{
	"english": {tag: language.English, tokenizer: englishTokenizer},
}

type sentence struct {
	text    string
	words   []string
	heading bool
}

type document struct {
	sentences []sentence
}

// candidates returns the non-heading sentences in document order.
func (d document) candidates() []sentence {
	out := make([]sentence, 0, len(d.sentences))
	for _, s := range d.sentences {
		if !s.heading {
			out = append(out, s)
		}
	}

	return out
}

func lookupLanguage(name string) (lang, error) {
	if name == "" {
		name = DefaultLanguage
	}

	l, ok := languages[strings.ToLower(name)]
	if !ok {
		return lang{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, name)
	}

	return l, nil
}

// parseDocument splits plain text into paragraphs on blank lines. Within a
// paragraph, upper-case lines are headings and the other lines are joined
// and split into sentences.
func parseDocument(text string, l lang) (document, error) {
	tokenizer, err := l.tokenizer()
	if err != nil {
		return document{}, fmt.Errorf("load sentence tokenizer: %w", err)
	}

	caser := cases.Lower(l.tag)

	var doc document
	var pending []string

	flush := func() {
		joined := strings.TrimSpace(strings.Join(pending, " "))
		pending = pending[:0]
		if joined == "" {
			return
		}

		for _, s := range tokenizer.Tokenize(joined) {
			t := strings.TrimSpace(s.Text)
			if t == "" {
				continue
			}

			doc.sentences = append(doc.sentences, sentence{
				text:  t,
				words: words(t, caser),
			})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case line == "":
			flush()
		case isHeading(line):
			flush()
			doc.sentences = append(doc.sentences, sentence{
				text:    line,
				words:   words(line, caser),
				heading: true,
			})
		default:
			pending = append(pending, line)
		}
	}
	flush()

	return doc, nil
}

// isHeading reports whether line has cased letters and all of them are upper case.
func isHeading(line string) bool {
	cased := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}

	return cased
}

// words extracts lower-cased word tokens. Numbers, punctuation and URLs are
// not words.
func words(text string, caser cases.Caser) []string {
	text = urlRe.ReplaceAllString(text, " ")

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '’' || r == '-')
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'’-")
		if !wordRe.MatchString(f) {
			continue
		}
		out = append(out, caser.String(f))
	}

	return out
}
