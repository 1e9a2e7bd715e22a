package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"clubsafe/internal/summarizer"
)

const (
	msgTextRequired     = "Text input is required"
	msgReviewRequired   = "Review text is required"
	msgInvalidBody      = "Invalid request body"
	msgSummarizeFailure = "Failed to summarize text"
)

var errTrailingData = errors.New("request body has data after the JSON value")

// Tagger classifies a venue review. Failures are reported in the result.
type Tagger interface {
	Analyze(ctx context.Context, review string) string
}

type textRequest struct {
	Text string `json:"text"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type tagResponse struct {
	Result string `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	summarizer   summarizer.Summarizer
	tagger       Tagger
	maxBodyBytes int64
	log          *slog.Logger
}

func NewHandler(
	s summarizer.Summarizer,
	t Tagger,
	maxBodyBytes int64,
	log *slog.Logger,
) *Handler {
	return &Handler{
		summarizer:   s,
		tagger:       t,
		maxBodyBytes: maxBodyBytes,
		log:          log,
	}
}

func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	if req.Text == "" {
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: msgTextRequired})

		return
	}

	sentences, err := h.summarizer.Summarize(r.Context(), summarizer.Input{
		Text:           req.Text,
		Language:       summarizer.DefaultLanguage,
		SentencesCount: summarizer.DefaultSentencesCount,
	})
	if err != nil {
		h.log.ErrorContext(r.Context(), "Failed to summarize text",
			"error", err,
			"textLen", len(req.Text))
		h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: msgSummarizeFailure})

		return
	}

	h.writeJSON(w, r, http.StatusOK, summaryResponse{Summary: strings.Join(sentences, " ")})
}

func (h *Handler) Tag(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	if req.Text == "" {
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: msgReviewRequired})

		return
	}

	h.writeJSON(w, r, http.StatusOK, tagResponse{Result: h.tagger.Analyze(r.Context(), req.Text)})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (textRequest, bool) {
	var req textRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err := decodeSingle(dec, &req); err != nil {
		h.log.DebugContext(r.Context(), "Failed to decode request body",
			"error", err,
			"path", r.URL.Path)
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})

		return textRequest{}, false
	}

	return req, true
}

// decodeSingle decodes exactly one JSON value; anything but whitespace after
// it is an error.
func decodeSingle(dec *json.Decoder, v any) error {
	if err := dec.Decode(v); err != nil {
		return err
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}

	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.WarnContext(r.Context(), "Failed to write response",
			"error", err,
			"status", status)
	}
}
