package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.5-flash"

	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"
	geminiKeyHeader   = "x-goog-api-key"
	geminiRoleUser    = "user"
)

// GeminiModel calls the Gemini generateContent REST endpoint.
type GeminiModel struct {
	client  *http.Client
	baseURL string
	model   string
	apiKey  string
}

func NewGeminiModel(apiKey, model, baseURL string, client *http.Client) (*GeminiModel, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("api key is empty")
	}

	if model == "" {
		model = DefaultGeminiModel
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &GeminiModel{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   strings.TrimPrefix(model, "models/"),
		apiKey:  apiKey,
	}, nil
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text *string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (m *GeminiModel) Generate(ctx context.Context, prompt string) (Response, error) {
	reqBody, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{
			Role:  geminiRoleUser,
			Parts: []geminiPart{{Text: &prompt}},
		}},
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", m.baseURL, url.PathEscape(m.model))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(contentTypeHeader, applicationJSON)
	req.Header.Set(geminiKeyHeader, m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Response{}, geminiStatusError(resp.StatusCode, raw)
	}

	var gr geminiResponse
	if err = json.Unmarshal(raw, &gr); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}

	return gr.toResponse(string(raw)), nil
}

// toResponse mirrors the quick text accessor of the Gemini SDKs: a single
// candidate made only of text parts is direct text, anything else with
// parts exposes the first candidate's parts.
func (gr geminiResponse) toResponse(raw string) Response {
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return Response{Kind: Neither, Raw: raw}
	}

	gParts := gr.Candidates[0].Content.Parts
	parts := make([]Part, len(gParts))
	allText := true
	for i, p := range gParts {
		parts[i] = Part{Text: p.Text}
		if p.Text == nil {
			allText = false
		}
	}

	if len(gr.Candidates) == 1 && allText {
		var b strings.Builder
		for _, p := range gParts {
			b.WriteString(*p.Text)
		}

		return Response{Kind: HasDirectText, Text: b.String(), Raw: raw}
	}

	return Response{Kind: HasParts, Parts: parts, Raw: raw}
}

func geminiStatusError(status int, body []byte) error {
	var ge geminiErrorResponse
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		return fmt.Errorf("gemini returned status %d (%s): %s", status, ge.Error.Status, ge.Error.Message)
	}

	return fmt.Errorf("gemini returned status %d", status)
}
