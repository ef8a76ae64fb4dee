package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tubelens/tubelens/internal/core/domain"
	"github.com/tubelens/tubelens/internal/ingest/sentiment"
)

const (
	defaultSearchResults = 5
	maxSearchResults     = 50

	maxSentimentBody = 1 << 20
)

type resultsEnvelope struct {
	Results any `json:"results"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func (s *Server) writeResults(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resultsEnvelope{Results: payload}); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errorEnvelope{Error: msg}); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode error response")
	}
}

// statusFor maps pipeline errors to HTTP status codes. Missing data and
// data that filtered down to nothing are the client's problem, upstream
// and model failures are a gateway problem.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrEmptyAfterFiltering):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstreamFailure), errors.Is(err, domain.ErrGenerationEmpty):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	evt := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		evt = s.logger.Error()
	}

	evt.Err(err).Str("path", r.URL.Path).Msg("request failed")

	s.writeError(w, status, err.Error())
}

func videoID(r *http.Request) string {
	return chi.URLParam(r, "videoID")
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.comments.Raw(r.Context(), videoID(r))
	if err != nil {
		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, comments)
}

func (s *Server) handleCommentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.comments.Summary(r.Context(), videoID(r))
	if err != nil {
		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, summary)
}

func (s *Server) handleCommentQA(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.URL.Query().Get("question"))
	if question == "" {
		s.writeError(w, http.StatusBadRequest, "question query parameter is required")

		return
	}

	answer, err := s.comments.Answer(r.Context(), videoID(r), question)
	if err != nil {
		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, answer)
}

type sentimentsRequest struct {
	Comments []string `json:"comments"`
}

type sentimentsResponse struct {
	Sentiments []string `json:"sentiments"`
}

func (s *Server) handleSentiments(w http.ResponseWriter, r *http.Request) {
	if !s.sentiment.Enabled() {
		s.writeError(w, http.StatusServiceUnavailable, "sentiment scoring is not configured")

		return
	}

	var req sentimentsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSentimentBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")

		return
	}

	labels, err := s.sentiment.Score(r.Context(), req.Comments)
	if err != nil {
		if errors.Is(err, sentiment.ErrNotConfigured) {
			s.writeError(w, http.StatusServiceUnavailable, "sentiment scoring is not configured")

			return
		}

		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, sentimentsResponse{Sentiments: labels})
}

func (s *Server) handleVideoDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.videos.VideoDetails(r.Context(), videoID(r))
	if err != nil {
		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, details)
}

type searchResponse struct {
	Videos        []domain.VideoDetails `json:"videos"`
	NextPageToken string                `json:"next_page_token,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter is required")

		return
	}

	maxResults := int64(defaultSearchResults)

	if raw := r.URL.Query().Get("max_results"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > maxSearchResults {
			s.writeError(w, http.StatusBadRequest, "max_results must be an integer between 1 and 50")

			return
		}

		maxResults = parsed
	}

	videos, nextPage, err := s.videos.Search(r.Context(), query, maxResults, r.URL.Query().Get("page_token"))
	if err != nil {
		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, searchResponse{Videos: videos, NextPageToken: nextPage})
}

type transcriptResponse struct {
	Transcript string `json:"transcript"`
	Length     int    `json:"length"`
	WordCount  int    `json:"word_count"`
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	transcript, err := s.transcripts.Transcript(r.Context(), videoID(r))
	if err != nil {
		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, transcriptResponse{
		Transcript: transcript.WithTimestamps,
		Length:     len(transcript.WithTimestamps),
		WordCount:  len(strings.Fields(transcript.Clean)),
	})
}

func (s *Server) handleTranscriptSegment(w http.ResponseWriter, r *http.Request) {
	start, err := optionalIntParam(r, "start")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "start must be an integer number of seconds")

		return
	}

	end, err := optionalIntParam(r, "end")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "end must be an integer number of seconds")

		return
	}

	if start != nil && end != nil && *end < *start {
		s.writeError(w, http.StatusBadRequest, "end must not be before start")

		return
	}

	segment, err := s.transcripts.Segment(r.Context(), videoID(r), start, end)
	if err != nil {
		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, segment)
}

func (s *Server) handleVideoSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.transcripts.Summary(r.Context(), videoID(r))
	if err != nil {
		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, summary)
}

func (s *Server) handleVideoQA(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.URL.Query().Get("question"))
	if question == "" {
		s.writeError(w, http.StatusBadRequest, "question query parameter is required")

		return
	}

	answer, err := s.transcripts.Answer(r.Context(), videoID(r), question)
	if err != nil {
		s.writePipelineError(w, r, err)

		return
	}

	s.writeResults(w, answer)
}

type cachePreview struct {
	Comments   []string `json:"comments"`
	Transcript []string `json:"transcript"`
}

func (s *Server) handleCachePreview(w http.ResponseWriter, r *http.Request) {
	id := videoID(r)

	s.writeResults(w, cachePreview{
		Comments:   s.comments.Store().Stages(id),
		Transcript: s.transcripts.Store().Stages(id),
	})
}

type purgeResponse struct {
	Purged bool `json:"purged"`
}

func (s *Server) handlePurgeVideo(w http.ResponseWriter, r *http.Request) {
	id := videoID(r)

	purged := s.comments.Store().Purge(id)
	purged = s.transcripts.Store().Purge(id) || purged

	s.logger.Info().Str("video_id", id).Bool("purged", purged).Msg("cache purge")

	s.writeResults(w, purgeResponse{Purged: purged})
}

type purgeAllResponse struct {
	CommentsPurged   int `json:"comments_purged"`
	TranscriptPurged int `json:"transcript_purged"`
}

func (s *Server) handlePurgeAll(w http.ResponseWriter, _ *http.Request) {
	resp := purgeAllResponse{
		CommentsPurged:   s.comments.Store().PurgeAll(),
		TranscriptPurged: s.transcripts.Store().PurgeAll(),
	}

	s.logger.Info().
		Int("comments", resp.CommentsPurged).
		Int("transcript", resp.TranscriptPurged).
		Msg("full cache purge")

	s.writeResults(w, resp)
}

func optionalIntParam(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}

	return &v, nil
}
