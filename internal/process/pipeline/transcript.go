package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tubelens/tubelens/internal/core/domain"
	"github.com/tubelens/tubelens/internal/core/embeddings"
	"github.com/tubelens/tubelens/internal/core/llm"
	"github.com/tubelens/tubelens/internal/process/cache"
	"github.com/tubelens/tubelens/internal/process/chunker"
	"github.com/tubelens/tubelens/internal/process/cleaner"
	"github.com/tubelens/tubelens/internal/process/vectorindex"
)

const (
	pipelineTranscript = "transcript"

	stageFetchCaptions = "fetch_captions"
)

// TranscriptsConfig tunes the transcript pipeline.
type TranscriptsConfig struct {
	// ChunkWords is the word-window size for retrieval chunks.
	ChunkWords int

	// ChunkOverlap is how many words consecutive windows share.
	ChunkOverlap int

	// TopK is how many chunks retrieval feeds into an answer.
	TopK int
}

func (c *TranscriptsConfig) applyDefaults() {
	if c.ChunkWords <= 0 {
		c.ChunkWords = 1000
	}

	if c.ChunkOverlap <= 0 || c.ChunkOverlap >= c.ChunkWords {
		c.ChunkOverlap = c.ChunkWords / 5
	}

	if c.TopK <= 0 {
		c.TopK = 4
	}
}

// Transcripts derives summaries, grounded answers and time-range lookups
// from a video's caption track, caching every intermediate stage per video.
type Transcripts struct {
	source   CaptionSource
	llm      llm.Client
	embedder embeddings.Provider
	store    *cache.Store
	cfg      TranscriptsConfig
	logger   *zerolog.Logger
}

func NewTranscripts(source CaptionSource, client llm.Client, embedder embeddings.Provider, store *cache.Store, cfg TranscriptsConfig, logger *zerolog.Logger) *Transcripts {
	cfg.applyDefaults()

	return &Transcripts{
		source:   source,
		llm:      client,
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Store returns the pipeline's cache for admin operations.
func (p *Transcripts) Store() *cache.Store { return p.store }

// Raw returns the fetched caption segments. A video without captions caches
// an empty slice; fetch failures are not cached.
func (p *Transcripts) Raw(ctx context.Context, videoID string) ([]domain.CaptionSegment, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageRaw, func(ctx context.Context) ([]domain.CaptionSegment, error) {
		start := time.Now()

		segments, err := p.source.Captions(ctx, videoID)
		observeStage(pipelineTranscript, cache.StageRaw, start, err)

		if err != nil {
			return nil, domain.WrapStage(stageFetchCaptions, err)
		}

		p.logger.Debug().Str("video_id", videoID).Int("segments", len(segments)).Msg("fetched captions")

		return segments, nil
	})
}

// Transcript returns the normalized transcript in both its timestamped and
// clean forms.
func (p *Transcripts) Transcript(ctx context.Context, videoID string) (domain.Transcript, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageNormalized, func(ctx context.Context) (domain.Transcript, error) {
		segments, err := p.Raw(ctx, videoID)
		if err != nil {
			return domain.Transcript{}, err
		}

		start := time.Now()

		withTimestamps := cleaner.FormatSegments(segments)
		tr := domain.Transcript{
			WithTimestamps: withTimestamps,
			Clean:          cleaner.StripTimestamps(withTimestamps),
		}

		observeStage(pipelineTranscript, cache.StageNormalized, start, nil)

		return tr, nil
	})
}

// transcriptChecked resolves the transcript and maps the no-captions case to
// ErrNotFound.
func (p *Transcripts) transcriptChecked(ctx context.Context, videoID string) (domain.Transcript, error) {
	tr, err := p.Transcript(ctx, videoID)
	if err != nil {
		return domain.Transcript{}, err
	}

	if tr.WithTimestamps == "" {
		return domain.Transcript{}, domain.WrapStage(stageFetchCaptions, domain.ErrNotFound)
	}

	return tr, nil
}

// Summary generates (or returns the cached) video summary from the
// timestamped transcript, so the model can cite timestamps.
func (p *Transcripts) Summary(ctx context.Context, videoID string) (string, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageSummary, func(ctx context.Context) (string, error) {
		tr, err := p.transcriptChecked(ctx, videoID)
		if err != nil {
			return "", err
		}

		start := time.Now()

		prompt := applyPromptTokens(transcriptSummaryPromptV1, map[string]string{
			tokenTranscript: tr.WithTimestamps,
		})

		summary, err := p.llm.Complete(ctx, prompt)
		observeStage(pipelineTranscript, cache.StageSummary, start, err)

		if err != nil {
			return "", domain.WrapStage(stageSummarize, err)
		}

		return summary, nil
	})
}

// Chunks splits the clean transcript into overlapping word windows.
func (p *Transcripts) Chunks(ctx context.Context, videoID string) ([]string, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageChunks, func(ctx context.Context) ([]string, error) {
		tr, err := p.transcriptChecked(ctx, videoID)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		chunks := chunker.WindowWords(tr.Clean, p.cfg.ChunkWords, p.cfg.ChunkOverlap)
		observeStage(pipelineTranscript, cache.StageChunks, start, nil)

		return chunks, nil
	})
}

// Index embeds the chunks and builds the similarity index.
func (p *Transcripts) Index(ctx context.Context, videoID string) (*vectorindex.Index, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageIndex, func(ctx context.Context) (*vectorindex.Index, error) {
		chunks, err := p.Chunks(ctx, videoID)
		if err != nil {
			return nil, err
		}

		start := time.Now()

		vectors, err := p.embedder.EmbedBatch(ctx, chunks)
		observeStage(pipelineTranscript, cache.StageIndex, start, err)

		if err != nil {
			return nil, domain.WrapStage(stageIndex, err)
		}

		idx, err := vectorindex.Build(chunks, vectors)
		if err != nil {
			return nil, domain.WrapStage(stageIndex, err)
		}

		return idx, nil
	})
}

// Answer retrieves the transcript chunks most relevant to the question and
// asks the model for an answer grounded in them and in the cached summary.
// Answers are not cached.
func (p *Transcripts) Answer(ctx context.Context, videoID, question string) (string, error) {
	summary, err := p.Summary(ctx, videoID)
	if err != nil {
		return "", err
	}

	idx, err := p.Index(ctx, videoID)
	if err != nil {
		return "", err
	}

	queryVec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return "", domain.WrapStage(stageAnswer, err)
	}

	relevant := idx.Search(queryVec, p.cfg.TopK)

	prompt := applyPromptTokens(transcriptQAPromptV1, map[string]string{
		tokenSummary:  summary,
		tokenContext:  strings.Join(relevant, "\n\n"),
		tokenQuestion: question,
	})

	answer, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		return "", domain.WrapStage(stageAnswer, err)
	}

	return answer, nil
}

// Segment returns the timestamped transcript restricted to markers within
// [start, end] seconds; nil bounds leave that side open.
func (p *Transcripts) Segment(ctx context.Context, videoID string, start, end *int) (string, error) {
	tr, err := p.transcriptChecked(ctx, videoID)
	if err != nil {
		return "", err
	}

	return cleaner.Segment(tr.WithTimestamps, start, end), nil
}
