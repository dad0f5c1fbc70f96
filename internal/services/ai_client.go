package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/config"
	"github.com/securelearn/backend/internal/models"
)

// maxPromptChars caps the text payload sent to the generation service to
// respect the remote model's context limit.
const maxPromptChars = 30000

// GenerationClient talks to the external question-generation service. The
// service is an unreliable collaborator: calls run under a bounded timeout
// and failures are surfaced as ErrUpstreamUnavailable, never retried.
type GenerationClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGenerationClient creates a new generation service client
func NewGenerationClient(cfg config.AIConfig) *GenerationClient {
	return &GenerationClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

type generateQuizRequest struct {
	Text       string `json:"text"`
	Count      int    `json:"count"`
	Difficulty string `json:"difficulty"`
}

type generateCourseRequest struct {
	Text string `json:"text"`
}

// GenerateQuestions requests draft questions for the given source text and
// returns the raw JSON payload. The response shape is not contractually
// fixed; normalization happens downstream.
func (c *GenerationClient) GenerateQuestions(ctx context.Context, text string, count int, difficulty string) ([]byte, error) {
	reqBody := generateQuizRequest{
		Text:       truncateText(text, maxPromptChars),
		Count:      count,
		Difficulty: difficulty,
	}

	body, err := c.post(ctx, "/generate-quiz", reqBody)
	if err != nil {
		return nil, err
	}

	content := cleanJSONContent(string(body))
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("%w: response is not valid JSON", apperrors.ErrUpstreamUnavailable)
	}

	return []byte(content), nil
}

// GenerateCourseDraft requests a course outline for the given source text
func (c *GenerationClient) GenerateCourseDraft(ctx context.Context, text string) (*models.CourseDraft, error) {
	reqBody := generateCourseRequest{
		Text: truncateText(text, maxPromptChars),
	}

	body, err := c.post(ctx, "/generate-course", reqBody)
	if err != nil {
		return nil, err
	}

	var draft models.CourseDraft
	if err := json.Unmarshal([]byte(cleanJSONContent(string(body))), &draft); err != nil {
		return nil, fmt.Errorf("%w: failed to parse course draft: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	return &draft, nil
}

// post sends a JSON request and returns the response body. Transport errors,
// timeouts and non-200 statuses all map to ErrUpstreamUnavailable.
func (c *GenerationClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	return body, nil
}

// cleanJSONContent strips markdown code fences some models wrap around JSON
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
	}
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
	}
	if strings.HasSuffix(content, "```") {
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

// truncateText limits text to max bytes, backing off to a rune boundary so
// a multibyte character is never split.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
