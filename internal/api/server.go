// Package api exposes the pipelines over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tubelens/tubelens/internal/core/domain"
	"github.com/tubelens/tubelens/internal/platform/observability"
	"github.com/tubelens/tubelens/internal/process/cache"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// CommentInsights is the comment pipeline surface the handlers use.
type CommentInsights interface {
	Raw(ctx context.Context, videoID string) ([]domain.Comment, error)
	Summary(ctx context.Context, videoID string) (string, error)
	Answer(ctx context.Context, videoID, question string) (string, error)
	Store() *cache.Store
}

// TranscriptInsights is the transcript pipeline surface the handlers use.
type TranscriptInsights interface {
	Transcript(ctx context.Context, videoID string) (domain.Transcript, error)
	Summary(ctx context.Context, videoID string) (string, error)
	Answer(ctx context.Context, videoID, question string) (string, error)
	Segment(ctx context.Context, videoID string, start, end *int) (string, error)
	Store() *cache.Store
}

// VideoDirectory resolves video metadata and search queries.
type VideoDirectory interface {
	VideoDetails(ctx context.Context, videoID string) (domain.VideoDetails, error)
	Search(ctx context.Context, query string, maxResults int64, pageToken string) ([]domain.VideoDetails, string, error)
}

// SentimentScorer classifies comment sentiment through an external model.
type SentimentScorer interface {
	Enabled() bool
	Score(ctx context.Context, comments []string) ([]string, error)
}

// Server serves the insight API.
type Server struct {
	comments    CommentInsights
	transcripts TranscriptInsights
	videos      VideoDirectory
	sentiment   SentimentScorer
	port        int
	logger      *zerolog.Logger
}

func NewServer(comments CommentInsights, transcripts TranscriptInsights, videos VideoDirectory, scorer SentimentScorer, port int, logger *zerolog.Logger) *Server {
	return &Server{
		comments:    comments,
		transcripts: transcripts,
		videos:      videos,
		sentiment:   scorer,
		port:        port,
		logger:      logger,
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Route("/comments", func(r chi.Router) {
		r.Get("/{videoID}", s.handleComments)
		r.Get("/summarize/{videoID}", s.handleCommentSummary)
		r.Get("/qa/{videoID}", s.handleCommentQA)
		r.Post("/sentiments", s.handleSentiments)
	})

	r.Route("/video", func(r chi.Router) {
		r.Get("/transcript/{videoID}", s.handleTranscript)
		r.Get("/transcript/{videoID}/segment", s.handleTranscriptSegment)
		r.Get("/summarize/{videoID}", s.handleVideoSummary)
		r.Get("/qa/{videoID}", s.handleVideoQA)
		r.Get("/{videoID}", s.handleVideoDetails)
	})

	r.Get("/search", s.handleSearch)

	r.Route("/cache", func(r chi.Router) {
		r.Get("/preview/{videoID}", s.handleCachePreview)
		r.Delete("/{videoID}", s.handlePurgeVideo)
		r.Delete("/", s.handlePurgeAll)
	})

	return r
}

// Start runs the API server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("API server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// observe records per-route request durations.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		status := fmt.Sprintf("%d", ww.Status())
		observability.HTTPRequestDuration.WithLabelValues(route, status).Observe(time.Since(start).Seconds())

		s.logger.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
