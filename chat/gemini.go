// Package chat implements the water assistant: a Gemini-backed
// conversation manager with quick-action shortcuts.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"aquawatch-be/common"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultModels is the ordered fallback list; the first model that answers
// wins.
var DefaultModels = []string{
	"gemini-2.0-flash",
	"gemini-1.5-pro",
	"gemini-pro",
	"gemini-1.5-pro-latest",
}

// SystemPrompt frames every conversation.
const SystemPrompt = `You are a helpful assistant focused on water-related issues in the community. ` +
	`Your role is to help users report water problems, provide information about water quality, ` +
	`and offer guidance on water conservation. Always prioritize user safety and direct them ` +
	`to emergency services when appropriate.`

// ErrNotConfigured is returned when no API key is present. The feature
// degrades with user-visible text instead of failing startup.
var ErrNotConfigured = errors.New("chat assistant is not configured")

// ErrorKind buckets transport failures into human-readable causes.
type ErrorKind string

const (
	ErrorOffline          ErrorKind = "offline"
	ErrorModelUnavailable ErrorKind = "model-unavailable"
	ErrorRateLimited      ErrorKind = "rate-limited"
	ErrorService          ErrorKind = "service-error"
	ErrorGeneric          ErrorKind = "generic"
)

// userFacingMessages maps error kinds to the text shown in the transcript.
var userFacingMessages = map[ErrorKind]string{
	ErrorOffline:          "No internet connection. Please check your network and try again.",
	ErrorModelUnavailable: "The AI model is temporarily unavailable. Please try again in a moment.",
	ErrorRateLimited:      "Too many requests. Please wait a moment before trying again.",
	ErrorService:          "The AI service is experiencing issues. Please try again later.",
	ErrorGeneric:          "Something went wrong. Please try again.",
}

// UserMessage returns the transcript text for kind.
func (k ErrorKind) UserMessage() string {
	return userFacingMessages[k]
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("gemini api error: status %d: %s", e.status, e.body)
}

// Classify buckets err for display.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorGeneric
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorOffline
	}
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.status == http.StatusNotFound:
			return ErrorModelUnavailable
		case apiErr.status == http.StatusTooManyRequests:
			return ErrorRateLimited
		case apiErr.status >= 500:
			return ErrorService
		}
	}
	return ErrorGeneric
}

// Message is one transcript entry as sent to the model.
type Message struct {
	Role    string `json:"role"` // "user" or "model"
	Content string `json:"content"`
}

// Generator is the model call the session manager depends on. Substitutable
// in tests.
type Generator interface {
	Generate(ctx context.Context, history []Message, prompt string) (string, error)
}

// Gemini calls the generative language REST API directly.
type Gemini struct {
	APIKey          string
	BaseURL         string
	Models          []string
	MaxRetries      int
	RetryDelay      time.Duration
	Temperature     float64
	MaxOutputTokens int
	Client          *http.Client
	limiter         *rate.Limiter
}

// NewGemini builds a client with the default model ladder, 3 whole-sequence
// retries with exponential backoff and a 2 rps outbound limit.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		APIKey:          apiKey,
		BaseURL:         defaultGeminiBaseURL,
		Models:          DefaultModels,
		MaxRetries:      3,
		RetryDelay:      time.Second,
		Temperature:     0.7,
		MaxOutputTokens: 1024,
		Client:          &http.Client{Timeout: 30 * time.Second},
		limiter:         rate.NewLimiter(rate.Limit(2), 4),
	}
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends prompt with the role-tagged history, walking the model
// fallback list and retrying the whole sequence with backoff when every
// model fails.
func (g *Gemini) Generate(ctx context.Context, history []Message, prompt string) (string, error) {
	if g.APIKey == "" {
		return "", ErrNotConfigured
	}

	logger := common.GetLoggerWith(common.LoggerNameChat)

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	var lastErr error
	for attempt := 0; attempt <= g.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between whole-sequence retries.
			select {
			case <-time.After(g.RetryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			logger.Info("retrying model sequence", zap.Int("attempt", attempt))
		}

		for _, model := range g.Models {
			text, err := g.generateWith(ctx, model, history, prompt)
			if err == nil {
				return text, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				return "", lastErr
			}
			logger.Warn("model attempt failed", zap.String("model", model), zap.Error(err))
		}
	}

	return "", lastErr
}

func (g *Gemini) generateWith(ctx context.Context, model string, history []Message, prompt string) (string, error) {
	contents := make([]geminiContent, 0, len(history)+2)
	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: SystemPrompt}},
	})
	for _, msg := range history {
		contents = append(contents, geminiContent{
			Role:  msg.Role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	contents = append(contents, geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: prompt}},
	})

	payload, err := json.Marshal(geminiRequest{
		Contents: contents,
		GenerationConfig: &generationConfig{
			Temperature:     g.Temperature,
			MaxOutputTokens: g.MaxOutputTokens,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.BaseURL, model, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return "", &apiError{status: resp.StatusCode, body: buf.String()}
	}

	var body geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return "", &apiError{status: resp.StatusCode, body: "empty candidates"}
	}

	return body.Candidates[0].Content.Parts[0].Text, nil
}
