package sentiment

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

func TestScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"great video", "terrible take"}, req.Comments)

		_ = json.NewEncoder(w).Encode(scoreResponse{Sentiments: []string{"positive", "negative"}})
	}))
	defer srv.Close()

	client := New(srv.URL, 0, nopLogger())

	got, err := client.Score(context.Background(), []string{"great video", "terrible take"})
	require.NoError(t, err)
	assert.Equal(t, []string{"positive", "negative"}, got)
}

func TestScoreNotConfigured(t *testing.T) {
	client := New("", 0, nopLogger())

	assert.False(t, client.Enabled())

	_, err := client.Score(context.Background(), []string{"x"})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestScoreServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := New(srv.URL, 0, nopLogger())

	_, err := client.Score(context.Background(), []string{"x"})
	require.ErrorIs(t, err, domain.ErrUpstreamFailure)
}

func TestScoreEmptyBatch(t *testing.T) {
	client := New("http://unused.example", 0, nopLogger())

	got, err := client.Score(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
