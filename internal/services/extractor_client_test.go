package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/config"
)

func newTestExtractorClient(serverURL string, timeout time.Duration) *ExtractorClient {
	return NewExtractorClient(config.ExtractorConfig{
		BaseURL: serverURL,
		Timeout: timeout,
	})
}

func TestExtractorClient_Extract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract-text", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "pdf", r.FormValue("extension"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 payload", string(content))

		w.Write([]byte(`{"text":"Extracted handbook text."}`))
	}))
	defer server.Close()

	client := newTestExtractorClient(server.URL, 5*time.Second)
	text, err := client.Extract(context.Background(), strings.NewReader("%PDF-1.4 payload"), "pdf")

	assert.NoError(t, err)
	assert.Equal(t, "Extracted handbook text.", text)
}

func TestExtractorClient_Extract_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := newTestExtractorClient(server.URL, 5*time.Second)
	_, err := client.Extract(context.Background(), strings.NewReader("broken"), "pdf")

	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExtraction)
}

func TestExtractorClient_Extract_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"text":"late"}`))
	}))
	defer server.Close()

	client := newTestExtractorClient(server.URL, 20*time.Millisecond)
	_, err := client.Extract(context.Background(), strings.NewReader("file"), "pdf")

	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExtraction)
}

func TestExtractorClient_Extract_MalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := newTestExtractorClient(server.URL, 5*time.Second)
	_, err := client.Extract(context.Background(), strings.NewReader("file"), "pdf")

	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExtraction)
}
