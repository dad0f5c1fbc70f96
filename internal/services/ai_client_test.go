package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/securelearn/backend/internal/apperrors"
	"github.com/securelearn/backend/internal/config"
)

func newTestGenerationClient(serverURL string, timeout time.Duration) *GenerationClient {
	return NewGenerationClient(config.AIConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Timeout: timeout,
	})
}

func TestGenerationClient_GenerateQuestions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-quiz", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "source text", req["text"])
		assert.Equal(t, float64(5), req["count"])

		w.Write([]byte("```json\n[{\"question\":\"Q1\",\"options\":[\"a\",\"b\"],\"correct_option\":\"a\"}]\n```"))
	}))
	defer server.Close()

	client := newTestGenerationClient(server.URL, 5*time.Second)
	raw, err := client.GenerateQuestions(context.Background(), "source text", 5, "medium")

	assert.NoError(t, err)
	assert.True(t, json.Valid(raw))
	assert.Contains(t, string(raw), "Q1")
}

func TestGenerationClient_GenerateQuestions_TruncatesLongText(t *testing.T) {
	var gotLen int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		gotLen = len(req["text"].(string))
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := newTestGenerationClient(server.URL, 5*time.Second)
	_, err := client.GenerateQuestions(context.Background(), strings.Repeat("x", maxPromptChars+500), 5, "medium")

	assert.NoError(t, err)
	assert.Equal(t, maxPromptChars, gotLen)
}

func TestGenerationClient_GenerateQuestions_TruncationKeepsRunesIntact(t *testing.T) {
	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		gotText = req["text"].(string)
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := newTestGenerationClient(server.URL, 5*time.Second)
	// The leading ASCII byte misaligns the three-byte runes against the
	// byte cap, so a naive byte slice would split a rune at the boundary
	// and send a mangled trailing character.
	_, err := client.GenerateQuestions(context.Background(), "x"+strings.Repeat("安", maxPromptChars/3+500), 5, "medium")

	assert.NoError(t, err)
	assert.False(t, strings.ContainsRune(gotText, utf8.RuneError))
	assert.LessOrEqual(t, len(gotText), maxPromptChars)
	assert.Greater(t, len(gotText), maxPromptChars-utf8.UTFMax)
}

func TestGenerationClient_GenerateQuestions_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestGenerationClient(server.URL, 5*time.Second)
	_, err := client.GenerateQuestions(context.Background(), "text", 5, "medium")

	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestGenerationClient_GenerateQuestions_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := newTestGenerationClient(server.URL, 20*time.Millisecond)
	_, err := client.GenerateQuestions(context.Background(), "text", 5, "medium")

	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestGenerationClient_GenerateQuestions_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("I could not generate questions for this text."))
	}))
	defer server.Close()

	client := newTestGenerationClient(server.URL, 5*time.Second)
	_, err := client.GenerateQuestions(context.Background(), "text", 5, "medium")

	assert.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestGenerationClient_GenerateCourseDraft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/generate-course", r.URL.Path)
		w.Write([]byte(`{"course_title":"Security Basics","course_description":"Intro","lessons":[{"title":"Phishing","summary":"Spotting fraud"}]}`))
	}))
	defer server.Close()

	client := newTestGenerationClient(server.URL, 5*time.Second)
	draft, err := client.GenerateCourseDraft(context.Background(), "handbook text")

	require.NoError(t, err)
	assert.Equal(t, "Security Basics", draft.CourseTitle)
	require.Len(t, draft.Lessons, 1)
	assert.Equal(t, "Phishing", draft.Lessons[0].Title)
}

func TestCleanJSONContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain json", input: `{"a":1}`, expected: `{"a":1}`},
		{name: "json fence", input: "```json\n{\"a\":1}\n```", expected: `{"a":1}`},
		{name: "bare fence", input: "```\n{\"a\":1}\n```", expected: `{"a":1}`},
		{name: "surrounding whitespace", input: "  {\"a\":1}\n", expected: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanJSONContent(tt.input))
		})
	}
}
