package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tubelens/tubelens/internal/core/domain"
	"github.com/tubelens/tubelens/internal/process/cache"
)

func captionFixture() []domain.CaptionSegment {
	return []domain.CaptionSegment{
		{Start: 0, Duration: 3, Text: "welcome back to the channel"},
		{Start: 3.5, Duration: 4, Text: "today we talk about caching"},
		{Start: 65, Duration: 5, Text: "and why purges are hard"},
	}
}

func newTranscriptsPipeline(source *fakeCaptionSource, model *fakeLLM, embedder *fakeEmbedder, cfg TranscriptsConfig) *Transcripts {
	return NewTranscripts(source, model, embedder, cache.New("transcript"), cfg, nopLogger())
}

func TestTranscriptNormalization(t *testing.T) {
	source := &fakeCaptionSource{segments: captionFixture()}
	p := newTranscriptsPipeline(source, &fakeLLM{reply: "s"}, &fakeEmbedder{}, TranscriptsConfig{})

	tr, err := p.Transcript(context.Background(), "vid1")
	require.NoError(t, err)

	assert.Equal(t,
		"(00:00:00) welcome back to the channel (00:00:03) today we talk about caching (00:01:05) and why purges are hard",
		tr.WithTimestamps)
	assert.Equal(t,
		"welcome back to the channel today we talk about caching and why purges are hard",
		tr.Clean)

	// Second resolution hits the cache.
	_, err = p.Transcript(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestTranscriptSummaryUsesTimestampedForm(t *testing.T) {
	source := &fakeCaptionSource{segments: captionFixture()}
	model := &fakeLLM{reply: "video summary"}
	p := newTranscriptsPipeline(source, model, &fakeEmbedder{}, TranscriptsConfig{})

	got, err := p.Summary(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Equal(t, "video summary", got)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "(00:01:05) and why purges are hard")

	_, err = p.Summary(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Len(t, model.prompts, 1, "summary must be cached")
}

func TestTranscriptNoCaptionsShortCircuits(t *testing.T) {
	source := &fakeCaptionSource{}
	model := &fakeLLM{reply: "unused"}
	embedder := &fakeEmbedder{}
	p := newTranscriptsPipeline(source, model, embedder, TranscriptsConfig{})

	_, err := p.Summary(context.Background(), "vid1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = p.Answer(context.Background(), "vid1", "what is covered?")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = p.Segment(context.Background(), "vid1", nil, nil)
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, 1, source.calls, "empty caption fetch is cached")
	assert.Empty(t, model.prompts)
	assert.Zero(t, embedder.batchCalls)
}

func TestTranscriptFetchErrorIsRetried(t *testing.T) {
	source := &fakeCaptionSource{err: fmt.Errorf("%w: player request failed", domain.ErrUpstreamFailure)}
	p := newTranscriptsPipeline(source, &fakeLLM{reply: "s"}, &fakeEmbedder{}, TranscriptsConfig{})

	_, err := p.Raw(context.Background(), "vid1")
	require.ErrorIs(t, err, domain.ErrUpstreamFailure)

	source.err = nil
	source.segments = captionFixture()

	segments, err := p.Raw(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Len(t, segments, 3)
	assert.Equal(t, 2, source.calls)
}

func TestTranscriptChunksOverlap(t *testing.T) {
	segments := make([]domain.CaptionSegment, 0, 5)
	for i := 0; i < 5; i++ {
		segments = append(segments, domain.CaptionSegment{
			Start: float64(i * 10),
			Text:  fmt.Sprintf("w%da w%db", i, i),
		})
	}

	source := &fakeCaptionSource{segments: segments}
	p := newTranscriptsPipeline(source, &fakeLLM{reply: "s"}, &fakeEmbedder{}, TranscriptsConfig{
		ChunkWords:   4,
		ChunkOverlap: 1,
	})

	chunks, err := p.Chunks(context.Background(), "vid1")
	require.NoError(t, err)

	// 10 words, windows of 4 advancing by 3.
	require.Len(t, chunks, 3)
	assert.Equal(t, "w0a w0b w1a w1b", chunks[0])
	assert.Equal(t, "w1b w2a w2b w3a", chunks[1])
	assert.Equal(t, "w3a w3b w4a w4b", chunks[2])
}

func TestTranscriptAnswerReusesCachedStages(t *testing.T) {
	source := &fakeCaptionSource{segments: captionFixture()}
	model := &fakeLLM{reply: "text"}
	embedder := &fakeEmbedder{}
	p := newTranscriptsPipeline(source, model, embedder, TranscriptsConfig{})

	_, err := p.Answer(context.Background(), "vid1", "what is the video about?")
	require.NoError(t, err)

	assert.Len(t, model.prompts, 2)
	assert.Equal(t, 1, embedder.batchCalls)
	assert.Equal(t, 1, embedder.embedCalls)

	_, err = p.Answer(context.Background(), "vid1", "is caching covered?")
	require.NoError(t, err)

	assert.Len(t, model.prompts, 3)
	assert.Equal(t, 1, embedder.batchCalls)
	assert.Equal(t, 2, embedder.embedCalls)
	assert.Equal(t, 1, source.calls)

	assert.True(t, strings.Contains(model.prompts[2], "is caching covered?"))
}

func TestTranscriptSegmentBounds(t *testing.T) {
	source := &fakeCaptionSource{segments: captionFixture()}
	p := newTranscriptsPipeline(source, &fakeLLM{reply: "s"}, &fakeEmbedder{}, TranscriptsConfig{})

	intPtr := func(n int) *int { return &n }

	got, err := p.Segment(context.Background(), "vid1", intPtr(1), intPtr(70))
	require.NoError(t, err)
	assert.Equal(t, "(00:00:03) today we talk about caching (00:01:05) and why purges are hard", got)

	full, err := p.Segment(context.Background(), "vid1", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, full, "(00:00:00) welcome back to the channel")
}

func TestTranscriptPurgeForcesRefetch(t *testing.T) {
	source := &fakeCaptionSource{segments: captionFixture()}
	p := newTranscriptsPipeline(source, &fakeLLM{reply: "s"}, &fakeEmbedder{}, TranscriptsConfig{})

	_, err := p.Transcript(context.Background(), "vid1")
	require.NoError(t, err)

	p.Store().Purge("vid1")

	_, err = p.Transcript(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}
