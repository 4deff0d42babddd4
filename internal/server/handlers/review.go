package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tranphatthinh/gramctl/internal/apierrors"
	"github.com/tranphatthinh/gramctl/internal/models"
)

// Reviewer rewrites text. The real service asks a language model; the stand-in echoes.
type Reviewer interface {
	Correct(ctx context.Context, text string) (string, error)
	Improve(ctx context.Context, text string) (string, error)
}

// EchoReviewer makes deterministic cosmetic fixes so clients can be tested offline
type EchoReviewer struct{}

// Correct collapses runs of whitespace, capitalizes the first letter and ends the text with a period
func (EchoReviewer) Correct(_ context.Context, text string) (string, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = tidy(line)
	}
	return strings.Join(lines, "\n"), nil
}

// Improve returns the corrected text
func (e EchoReviewer) Improve(ctx context.Context, text string) (string, error) {
	return e.Correct(ctx, text)
}

func tidy(line string) string {
	line = strings.Join(strings.Fields(line), " ")
	if line == "" {
		return line
	}
	r, size := utf8.DecodeRuneInString(line)
	line = string(unicode.ToUpper(r)) + line[size:]
	if last, _ := utf8.DecodeLastRuneInString(line); !strings.ContainsRune(".!?…", last) {
		line += "."
	}
	return line
}

// ReviewHandler handles the grammar check and suggestion endpoints
type ReviewHandler struct {
	reviewer Reviewer
	metrics  *MetricsHandler
	logger   *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewer Reviewer, metrics *MetricsHandler, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewer: reviewer,
		metrics:  metrics,
		logger:   logger,
	}
}

// TextRequest is the body of the review endpoints
type TextRequest struct {
	Text string `json:"text"`
}

// CheckGrammar handles POST /check-grammar
func (h *ReviewHandler) CheckGrammar(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readText(w, r)
	if !ok {
		return
	}

	corrected, err := h.reviewer.Correct(r.Context(), text)
	if err != nil {
		h.fail(w, "check-grammar", err)
		return
	}

	h.metrics.IncrementReviews("grammar")
	apierrors.WriteJSON(w, http.StatusOK, models.Review{
		Original:  toHTML(text),
		Corrected: toHTML(corrected),
	})
}

// SuggestImprovement handles POST /suggest-improvement
func (h *ReviewHandler) SuggestImprovement(w http.ResponseWriter, r *http.Request) {
	text, ok := h.readText(w, r)
	if !ok {
		return
	}

	suggestion, err := h.reviewer.Improve(r.Context(), text)
	if err != nil {
		h.fail(w, "suggest-improvement", err)
		return
	}

	h.metrics.IncrementReviews("improvement")
	apierrors.WriteJSON(w, http.StatusOK, models.Review{
		Original:   toHTML(text),
		Suggestion: toHTML(suggestion),
	})
}

func (h *ReviewHandler) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req TextRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apierrors.WriteError(w, apierrors.MsgInvalidBody, http.StatusBadRequest)
		return "", false
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		apierrors.WriteError(w, apierrors.MsgNoText, http.StatusBadRequest)
		return "", false
	}
	return text, true
}

func (h *ReviewHandler) fail(w http.ResponseWriter, endpoint string, err error) {
	h.logger.Error("Review failed", "endpoint", endpoint, "error", err)
	apierrors.WriteError(w, "Lỗi xử lý: "+err.Error(), http.StatusInternalServerError)
}

// toHTML keeps line breaks visible when the reply is inserted into a page
func toHTML(s string) string {
	return strings.ReplaceAll(s, "\n", "<br>")
}
