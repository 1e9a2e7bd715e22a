package tagger

import (
	"fmt"
	"strings"
)

// Kind tells which shape a model response has.
type Kind int

const (
	Neither Kind = iota
	HasDirectText
	HasParts
)

func (k Kind) String() string {
	switch k {
	case HasDirectText:
		return "direct_text"
	case HasParts:
		return "parts"
	default:
		return "neither"
	}
}

const (
	ResultEmpty            = "Error: Empty response from the model"
	ResultEmptyParts       = "Error: Empty response from the model parts"
	ResultUnexpectedFormat = "Error: Unexpected or empty response format"

	attributeErrorPrefix = "AttributeError: "
	genericErrorPrefix   = "An error occurred: "
)

// Part is one piece of a multi-part response. Text is nil for parts that
// carry no text, such as function calls or refusals.
type Part struct {
	Text *string
}

// TextPart returns a Part holding s.
func TextPart(s string) Part {
	return Part{Text: &s}
}

// Response is a provider-neutral view of a generation result.
type Response struct {
	Kind  Kind
	Text  string
	Parts []Part
	// Raw is the provider payload, kept for diagnostics.
	Raw string
}

// AttributeError reports a response that lacks a field its shape promises.
type AttributeError struct {
	Msg string
}

func (e *AttributeError) Error() string {
	return e.Msg
}

// Shapeless reports whether resp has neither direct text nor any parts.
func (r Response) Shapeless() bool {
	return r.Kind != HasDirectText && (r.Kind != HasParts || len(r.Parts) == 0)
}

// Extract returns the trimmed model text, or one of the Result* strings when
// there is nothing usable. The only error is *AttributeError.
func Extract(resp Response) (string, error) {
	switch {
	case resp.Kind == HasDirectText:
		if content := strings.TrimSpace(resp.Text); content != "" {
			return content, nil
		}

		return ResultEmpty, nil
	case resp.Kind == HasParts && len(resp.Parts) > 0:
		var b strings.Builder
		for i, part := range resp.Parts {
			if part.Text == nil {
				return "", &AttributeError{Msg: fmt.Sprintf("part %d has no attribute 'text'", i)}
			}
			b.WriteString(*part.Text)
		}

		if content := strings.TrimSpace(b.String()); content != "" {
			return content, nil
		}

		return ResultEmptyParts, nil
	default:
		return ResultUnexpectedFormat, nil
	}
}
