package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubelens/tubelens/internal/core/domain"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()

	return &l
}

type completionChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

func completionServer(t *testing.T, contents []string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		choices := make([]completionChoice, 0, len(contents))

		for _, content := range contents {
			var ch completionChoice
			ch.Message.Role = "assistant"
			ch.Message.Content = content
			choices = append(choices, ch)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": choices,
		})
	}))
}

func newTestClient(baseURL string) Client {
	return NewOpenAI(Config{
		APIKey:       "test-key",
		RateLimitRPS: 100,
		BaseURL:      baseURL + "/v1",
	}, nopLogger())
}

func TestCompleteTrimsContent(t *testing.T) {
	srv := completionServer(t, []string{"  a fine summary \n"})
	defer srv.Close()

	got, err := newTestClient(srv.URL).Complete(context.Background(), "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "a fine summary", got)
}

func TestCompleteEmptyChoicesIsGenerationEmpty(t *testing.T) {
	srv := completionServer(t, nil)
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "summarize this")
	require.ErrorIs(t, err, domain.ErrGenerationEmpty)
}

func TestCompleteBlankContentIsGenerationEmpty(t *testing.T) {
	srv := completionServer(t, []string{"   \n\t "})
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "summarize this")
	require.ErrorIs(t, err, domain.ErrGenerationEmpty)
}

func TestCompleteServerErrorIsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), "summarize this")
	require.ErrorIs(t, err, domain.ErrUpstreamFailure)
}
