// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together the YouTube clients, the LLM and embedding
// providers, the two cached pipelines, and the HTTP surfaces (insight API
// plus health and metrics).
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tubelens/tubelens/internal/api"
	"github.com/tubelens/tubelens/internal/core/embeddings"
	"github.com/tubelens/tubelens/internal/core/llm"
	"github.com/tubelens/tubelens/internal/ingest/captions"
	"github.com/tubelens/tubelens/internal/ingest/sentiment"
	"github.com/tubelens/tubelens/internal/ingest/youtube"
	"github.com/tubelens/tubelens/internal/platform/config"
	"github.com/tubelens/tubelens/internal/platform/observability"
	"github.com/tubelens/tubelens/internal/platform/worker"
	"github.com/tubelens/tubelens/internal/process/cache"
	"github.com/tubelens/tubelens/internal/process/pipeline"
)

const (
	commentsStoreName   = "comments"
	transcriptStoreName = "transcript"

	statsWorkerName = "cache-stats"
)

// App holds the wired application dependencies.
type App struct {
	cfg    *config.Config
	logger *zerolog.Logger

	comments    *pipeline.Comments
	transcripts *pipeline.Transcripts
	videos      *youtube.Client
	sentiment   *sentiment.Client
}

// New wires all dependencies from the loaded configuration.
func New(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	videos, err := youtube.New(ctx, cfg.YouTubeAPIKey, logger)
	if err != nil {
		return nil, fmt.Errorf("youtube client init: %w", err)
	}

	captionClient := captions.New(captions.Config{
		PreferredLangs: cfg.PreferredCaptionLangs,
		Timeout:        cfg.HTTPTimeout,
	}, logger)

	llmClient := llm.NewOpenAI(llm.Config{
		APIKey:       cfg.LLMAPIKey,
		Model:        cfg.LLMModel,
		RateLimitRPS: cfg.RateLimitRPS,
	}, logger)

	embedder := embeddings.NewOpenAIProvider(embeddings.OpenAIConfig{
		APIKey:    cfg.LLMAPIKey,
		Model:     cfg.EmbeddingModel,
		RateLimit: cfg.RateLimitRPS,
	})

	comments := pipeline.NewComments(videos, llmClient, embedder, cache.New(commentsStoreName), pipeline.CommentsConfig{
		MaxPerRequest: cfg.CommentMaxPerRequest,
		ChunkSize:     cfg.CommentChunkSize,
		TopK:          cfg.RetrievalTopK,
	}, logger)

	transcripts := pipeline.NewTranscripts(captionClient, llmClient, embedder, cache.New(transcriptStoreName), pipeline.TranscriptsConfig{
		ChunkWords:   cfg.TranscriptChunkWords,
		ChunkOverlap: cfg.TranscriptChunkOverlap,
		TopK:         cfg.RetrievalTopK,
	}, logger)

	return &App{
		cfg:         cfg,
		logger:      logger,
		comments:    comments,
		transcripts: transcripts,
		videos:      videos,
		sentiment:   sentiment.New(cfg.SentimentAPIURL, cfg.HTTPTimeout, logger),
	}, nil
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunStatsWorker periodically publishes cache size gauges.
func (a *App) RunStatsWorker(ctx context.Context) error {
	return worker.SingleTickerLoop(ctx, worker.SingleTickerConfig{
		Name:       statsWorkerName,
		Interval:   a.cfg.StatsPublishInterval,
		RunOnStart: true,
		Logger:     a.logger,
		OnTick: func(context.Context) {
			a.comments.Store().PublishMetrics()
			a.transcripts.Store().PublishMetrics()
		},
	})
}

// RunAPI serves the insight API until the context is canceled.
func (a *App) RunAPI(ctx context.Context) error {
	srv := api.NewServer(a.comments, a.transcripts, a.videos, a.sentiment, a.cfg.APIPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("api server: %w", err)
	}

	return nil
}
