package tagger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	DefaultOpenAIModel = openai.ChatModelGPT5Mini2025_08_07

	openAIOutputMessage = "message"
	openAIOutputText    = "output_text"
)

// OpenAIModel calls OpenAI's Responses API. Any OpenAI-compatible endpoint
// can be used through baseURL.
type OpenAIModel struct {
	client openai.Client
	model  openai.ChatModel
}

func NewOpenAIModel(apiKey, model, baseURL string, httpClient *http.Client) (*OpenAIModel, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("api key is empty")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	chatModel := DefaultOpenAIModel
	if model != "" {
		chatModel = openai.ChatModel(model)
	}

	return &OpenAIModel{
		client: openai.NewClient(opts...),
		model:  chatModel,
	}, nil
}

func (m *OpenAIModel) Generate(ctx context.Context, prompt string) (Response, error) {
	resp, err := m.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: m.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
	})
	if err != nil {
		return Response{}, fmt.Errorf("do request: %w", err)
	}

	return openAIResponse(resp), nil
}

// openAIResponse treats a single output message as direct text and several
// messages as parts. Refusals are parts without text.
func openAIResponse(resp *responses.Response) Response {
	raw := resp.RawJSON()

	var messages int
	var parts []Part
	for _, item := range resp.Output {
		if item.Type != openAIOutputMessage {
			continue
		}
		messages++

		for _, content := range item.AsMessage().Content {
			if content.Type == openAIOutputText {
				parts = append(parts, TextPart(content.Text))
			} else {
				parts = append(parts, Part{})
			}
		}
	}

	switch {
	case messages == 0 || len(parts) == 0:
		return Response{Kind: Neither, Raw: raw}
	case messages == 1:
		return Response{Kind: HasDirectText, Text: resp.OutputText(), Raw: raw}
	default:
		return Response{Kind: HasParts, Parts: parts, Raw: raw}
	}
}
