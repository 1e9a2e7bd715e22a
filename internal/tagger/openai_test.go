package tagger_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubsafe/internal/tagger"
)

func openAIServer(t *testing.T, status int, body string) (*httptest.Server, *map[string]any) {
	t.Helper()

	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &payload))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv, &payload
}

func newOpenAI(t *testing.T, srv *httptest.Server) *tagger.OpenAIModel {
	t.Helper()

	m, err := tagger.NewOpenAIModel("secret", "gpt-test", srv.URL+"/", srv.Client())
	require.NoError(t, err)

	return m
}

func TestOpenAIGenerateSingleMessage(t *testing.T) {
	srv, payload := openAIServer(t, http.StatusOK, `{
		"id": "resp_1",
		"object": "response",
		"status": "completed",
		"model": "gpt-test",
		"output": [{
			"type": "message",
			"id": "msg_1",
			"role": "assistant",
			"status": "completed",
			"content": [{"type": "output_text", "text": "Harassment, Drugs", "annotations": []}]
		}]
	}`)

	resp, err := newOpenAI(t, srv).Generate(context.Background(), "the prompt")
	require.NoError(t, err)

	assert.Equal(t, tagger.HasDirectText, resp.Kind)
	assert.Equal(t, "Harassment, Drugs", resp.Text)
	assert.Equal(t, "gpt-test", (*payload)["model"])
	assert.Equal(t, "the prompt", (*payload)["input"])
}

func TestOpenAIGenerateMultipleMessages(t *testing.T) {
	srv, _ := openAIServer(t, http.StatusOK, `{
		"id": "resp_2",
		"object": "response",
		"status": "completed",
		"output": [
			{"type": "reasoning", "id": "rs_1", "summary": []},
			{"type": "message", "id": "msg_1", "role": "assistant", "status": "completed",
			 "content": [{"type": "output_text", "text": "Assault", "annotations": []}]},
			{"type": "message", "id": "msg_2", "role": "assistant", "status": "completed",
			 "content": [{"type": "refusal", "refusal": "no"}]}
		]
	}`)

	resp, err := newOpenAI(t, srv).Generate(context.Background(), "p")
	require.NoError(t, err)

	require.Equal(t, tagger.HasParts, resp.Kind)
	require.Len(t, resp.Parts, 2)
	assert.Equal(t, "Assault", *resp.Parts[0].Text)
	assert.Nil(t, resp.Parts[1].Text)
}

func TestOpenAIGenerateWithoutMessages(t *testing.T) {
	srv, _ := openAIServer(t, http.StatusOK, `{
		"id": "resp_3",
		"object": "response",
		"status": "incomplete",
		"output": [{"type": "reasoning", "id": "rs_1", "summary": []}]
	}`)

	resp, err := newOpenAI(t, srv).Generate(context.Background(), "p")
	require.NoError(t, err)

	assert.Equal(t, tagger.Neither, resp.Kind)
	assert.Contains(t, resp.Raw, "resp_3")
}

func TestOpenAIGenerateErrorStatus(t *testing.T) {
	srv, _ := openAIServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)

	_, err := newOpenAI(t, srv).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
