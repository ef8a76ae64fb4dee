// Package pipeline wires the fetch, clean, chunk, index and generation
// stages into the two derived-data pipelines: one over a video's comment
// section and one over its transcript. All stage results are cached per
// video; failed stages are retried on the next request.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/tubelens/tubelens/internal/core/domain"
	"github.com/tubelens/tubelens/internal/platform/observability"
	"github.com/tubelens/tubelens/internal/process/cache"
)

// CommentSource provides video statistics and top-level comments.
type CommentSource interface {
	VideoStats(ctx context.Context, videoID string) (domain.VideoStats, error)
	Comments(ctx context.Context, videoID string, maxResults int64, order domain.CommentOrder) ([]domain.Comment, error)
}

// CaptionSource provides the caption segments for a video. A video without
// captions yields an empty slice and no error; errors mean the fetch itself
// failed.
type CaptionSource interface {
	Captions(ctx context.Context, videoID string) ([]domain.CaptionSegment, error)
}

func observeStage(pipeline string, stage cache.Stage, start time.Time, err error) {
	observability.StageDuration.WithLabelValues(pipeline, string(stage)).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.StageErrors.WithLabelValues(pipeline, string(stage), errReason(err)).Inc()
	}
}

func errReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEmptyAfterFiltering):
		return "empty_after_filtering"
	case errors.Is(err, domain.ErrGenerationEmpty):
		return "generation_empty"
	case errors.Is(err, domain.ErrUpstreamFailure):
		return "upstream_failure"
	default:
		return "other"
	}
}
