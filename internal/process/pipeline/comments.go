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
	pipelineComments = "comments"

	stageFetchComments = "fetch_comments"
	stageCleanComments = "clean_comments"
	stageSummarize     = "summarize"
	stageIndex         = "index"
	stageAnswer        = "answer"
)

// CommentsConfig tunes the comment pipeline.
type CommentsConfig struct {
	// MaxPerRequest caps a single comment listing request.
	MaxPerRequest int

	// ChunkSize is the number of cleaned comments per retrieval chunk.
	ChunkSize int

	// TopK is how many chunks retrieval feeds into an answer.
	TopK int
}

func (c *CommentsConfig) applyDefaults() {
	if c.MaxPerRequest <= 0 {
		c.MaxPerRequest = 100
	}

	if c.ChunkSize <= 0 {
		c.ChunkSize = 20
	}

	if c.TopK <= 0 {
		c.TopK = 4
	}
}

// Comments derives summaries and grounded answers from a video's comment
// section, caching every intermediate stage per video.
type Comments struct {
	source   CommentSource
	llm      llm.Client
	embedder embeddings.Provider
	store    *cache.Store
	cfg      CommentsConfig
	logger   *zerolog.Logger
}

func NewComments(source CommentSource, client llm.Client, embedder embeddings.Provider, store *cache.Store, cfg CommentsConfig, logger *zerolog.Logger) *Comments {
	cfg.applyDefaults()

	return &Comments{
		source:   source,
		llm:      client,
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Store returns the pipeline's cache for admin operations.
func (p *Comments) Store() *cache.Store { return p.store }

// Raw returns the fetched comments for a video. A video that genuinely has
// no comments caches an empty slice; fetch failures are not cached.
func (p *Comments) Raw(ctx context.Context, videoID string) ([]domain.Comment, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageRaw, func(ctx context.Context) ([]domain.Comment, error) {
		start := time.Now()

		comments, err := p.fetch(ctx, videoID)
		observeStage(pipelineComments, cache.StageRaw, start, err)

		if err != nil {
			return nil, domain.WrapStage(stageFetchComments, err)
		}

		p.logger.Debug().Str("video_id", videoID).Int("count", len(comments)).Msg("fetched comments")

		return comments, nil
	})
}

// fetch implements the two-phase listing policy: up to MaxPerRequest comments
// by relevance, then, only when the video has more comments than one request
// covers, up to MaxPerRequest more by recency. Overlap between the two orders
// is kept as-is; each comment is tagged with the order that produced it.
func (p *Comments) fetch(ctx context.Context, videoID string) ([]domain.Comment, error) {
	stats, err := p.source.VideoStats(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if stats.CommentCount == 0 {
		return []domain.Comment{}, nil
	}

	maxPer := int64(p.cfg.MaxPerRequest)

	first := stats.CommentCount
	if first > maxPer {
		first = maxPer
	}

	all, err := p.source.Comments(ctx, videoID, first, domain.OrderRelevance)
	if err != nil {
		return nil, err
	}

	if stats.CommentCount > maxPer {
		remaining := stats.CommentCount - int64(len(all))
		if remaining > 0 {
			if remaining > maxPer {
				remaining = maxPer
			}

			recent, err := p.source.Comments(ctx, videoID, remaining, domain.OrderTime)
			if err != nil {
				return nil, err
			}

			all = append(all, recent...)
		}
	}

	return all, nil
}

// Cleaned returns the rendered and filtered comment lines. An all-filtered
// result is cached; interpreting emptiness is left to the consumers.
func (p *Comments) Cleaned(ctx context.Context, videoID string) ([]string, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageNormalized, func(ctx context.Context) ([]string, error) {
		raw, err := p.Raw(ctx, videoID)
		if err != nil {
			return nil, err
		}

		start := time.Now()
		cleaned := cleaner.CleanAll(raw)
		observeStage(pipelineComments, cache.StageNormalized, start, nil)

		return cleaned, nil
	})
}

// cleanedChecked resolves the cleaned comments and applies the emptiness
// taxonomy: no comments at all is ErrNotFound, everything filtered away is
// ErrEmptyAfterFiltering.
func (p *Comments) cleanedChecked(ctx context.Context, videoID string) ([]string, error) {
	raw, err := p.Raw(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, domain.WrapStage(stageFetchComments, domain.ErrNotFound)
	}

	cleaned, err := p.Cleaned(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if len(cleaned) == 0 {
		return nil, domain.WrapStage(stageCleanComments, domain.ErrEmptyAfterFiltering)
	}

	return cleaned, nil
}

// Summary generates (or returns the cached) comment-section summary. The
// summary is built from the full cleaned text, not from retrieval chunks.
func (p *Comments) Summary(ctx context.Context, videoID string) (string, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageSummary, func(ctx context.Context) (string, error) {
		cleaned, err := p.cleanedChecked(ctx, videoID)
		if err != nil {
			return "", err
		}

		start := time.Now()

		prompt := applyPromptTokens(commentSummaryPromptV1, map[string]string{
			tokenComments: strings.Join(cleaned, "\n\n"),
		})

		summary, err := p.llm.Complete(ctx, prompt)
		observeStage(pipelineComments, cache.StageSummary, start, err)

		if err != nil {
			return "", domain.WrapStage(stageSummarize, err)
		}

		return summary, nil
	})
}

// Chunks groups the cleaned comments into retrieval chunks.
func (p *Comments) Chunks(ctx context.Context, videoID string) ([]string, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageChunks, func(ctx context.Context) ([]string, error) {
		cleaned, err := p.cleanedChecked(ctx, videoID)
		if err != nil {
			return nil, err
		}

		return chunker.GroupLines(cleaned, p.cfg.ChunkSize), nil
	})
}

// Index embeds the chunks and builds the similarity index.
func (p *Comments) Index(ctx context.Context, videoID string) (*vectorindex.Index, error) {
	return cache.Resolve(ctx, p.store, videoID, cache.StageIndex, func(ctx context.Context) (*vectorindex.Index, error) {
		chunks, err := p.Chunks(ctx, videoID)
		if err != nil {
			return nil, err
		}

		start := time.Now()

		vectors, err := p.embedder.EmbedBatch(ctx, chunks)
		observeStage(pipelineComments, cache.StageIndex, start, err)

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

// Answer retrieves the chunks most relevant to the question and asks the
// model for an answer grounded in them and in the cached summary. Answers
// themselves are not cached; only their inputs are.
func (p *Comments) Answer(ctx context.Context, videoID, question string) (string, error) {
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

	prompt := applyPromptTokens(commentQAPromptV1, map[string]string{
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
