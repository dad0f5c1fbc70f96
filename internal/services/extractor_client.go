package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/config"
)

// ExtractorClient talks to the external document-extraction service, which
// converts PDF/DOCX binaries into plain text with page and paragraph
// boundaries flattened to newlines.
type ExtractorClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewExtractorClient creates a new extraction service client
func NewExtractorClient(cfg config.ExtractorConfig) *ExtractorClient {
	return &ExtractorClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
	}
}

type extractResponse struct {
	Text string `json:"text"`
}

// Extract uploads the document and returns the extracted plain text.
// Transport failures and parser errors on the remote side surface as
// ErrExtraction.
func (c *ExtractorClient) Extract(ctx context.Context, file io.Reader, extension string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "document."+extension)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}
	if err := writer.WriteField("extension", extension); err != nil {
		return "", fmt.Errorf("failed to write extension field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract-text", &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrExtraction, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", apperrors.ErrExtraction, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", apperrors.ErrExtraction, resp.StatusCode)
	}

	var extracted extractResponse
	if err := json.Unmarshal(body, &extracted); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %v", apperrors.ErrExtraction, err)
	}

	return extracted.Text, nil
}
