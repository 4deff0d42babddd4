// Package review calls the grammar-check and suggestion endpoints with the stored credential.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tranphatthinh/gramctl/internal/client/config"
)

// Response field names used by the service
const (
	fieldOriginal   = "VĂN BẢN GỐC"
	fieldCorrected  = "VĂN BẢN ĐÃ SỬA"
	fieldSuggestion = "GỢI Ý CẢI THIỆN"
)

var ErrEmptyText = errors.New("no text provided")

// API is the part of client.Client used here
type API interface {
	PostJSON(ctx context.Context, path string, body, out interface{}) (int, error)
}

// APIError is an error reported by the service
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// Result holds the submitted text and the service's rewrite of it
type Result struct {
	Original string `json:"original"`
	Revised  string `json:"revised"`
}

// Service wraps the two text endpoints
type Service struct {
	api API
}

// NewService creates a review service. api must carry the access token.
func NewService(api API) *Service {
	return &Service{api: api}
}

// CheckGrammar asks the service to find and fix spelling and grammar mistakes
func (s *Service) CheckGrammar(ctx context.Context, text string) (*Result, error) {
	return s.submit(ctx, config.CheckGrammarPath, fieldCorrected, text)
}

// SuggestImprovement asks the service to rephrase text without changing its meaning
func (s *Service) SuggestImprovement(ctx context.Context, text string) (*Result, error) {
	return s.submit(ctx, config.SuggestPath, fieldSuggestion, text)
}

func (s *Service) submit(ctx context.Context, path, field, text string) (*Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	var resp map[string]any
	status, err := s.api.PostJSON(ctx, path, map[string]string{"text": text}, &resp)
	if err != nil {
		// an unreadable error body still carries its status
		if status >= 300 {
			return nil, &APIError{Status: status, Message: http.StatusText(status)}
		}
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}

	if msg := errorMessage(resp["error"]); msg != "" || status >= 300 {
		if msg == "" {
			msg = "request failed"
		}
		return nil, &APIError{Status: status, Message: msg}
	}

	revised, ok := resp[field].(string)
	if !ok {
		return nil, fmt.Errorf("response from %s has no %q field", path, field)
	}

	original, _ := resp[fieldOriginal].(string)
	if original == "" {
		original = text
	}

	return &Result{
		Original: fromHTML(original),
		Revised:  fromHTML(revised),
	}, nil
}

// errorMessage reads the "error" field, which proxies sometimes send as an object
func errorMessage(v any) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	case map[string]any:
		if msg, ok := e["message"].(string); ok && msg != "" {
			return msg
		}
	}
	data, _ := json.Marshal(v)
	return string(data)
}

// fromHTML undoes the service's newline to <br> conversion
func fromHTML(s string) string {
	s = strings.ReplaceAll(s, "<br/>", "\n")
	s = strings.ReplaceAll(s, "<br />", "\n")
	return strings.ReplaceAll(s, "<br>", "\n")
}
