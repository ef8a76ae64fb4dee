// Package youtube adapts the YouTube Data API to the domain types the
// pipelines and the API layer consume.
package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/tubelens/tubelens/internal/core/domain"
	"github.com/tubelens/tubelens/internal/platform/observability"
)

const (
	fetchSource = "youtube"

	statusOK    = "ok"
	statusError = "error"
)

// Client wraps the Data API service.
type Client struct {
	svc    *youtube.Service
	logger *zerolog.Logger
}

func New(ctx context.Context, apiKey string, logger *zerolog.Logger) (*Client, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	return &Client{svc: svc, logger: logger}, nil
}

// VideoStats returns the statistics the comment pipeline needs to plan its
// fetch. A missing video is ErrNotFound.
func (c *Client) VideoStats(ctx context.Context, videoID string) (domain.VideoStats, error) {
	resp, err := c.svc.Videos.List([]string{"snippet", "statistics"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return domain.VideoStats{}, fmt.Errorf("%w: listing video %s: %w", domain.ErrUpstreamFailure, videoID, err)
	}

	observability.FetchRequests.WithLabelValues(fetchSource, statusOK).Inc()

	if len(resp.Items) == 0 {
		return domain.VideoStats{}, fmt.Errorf("%w: video %s", domain.ErrNotFound, videoID)
	}

	item := resp.Items[0]
	stats := domain.VideoStats{Title: item.Snippet.Title}

	if item.Statistics != nil {
		stats.Views = int64(item.Statistics.ViewCount)
		stats.Likes = int64(item.Statistics.LikeCount)
		stats.CommentCount = int64(item.Statistics.CommentCount)
	}

	return stats, nil
}

// Comments lists top-level comments in the given order. Each returned comment
// is tagged with the order that produced it.
func (c *Client) Comments(ctx context.Context, videoID string, maxResults int64, order domain.CommentOrder) ([]domain.Comment, error) {
	resp, err := c.svc.CommentThreads.List([]string{"snippet"}).
		VideoId(videoID).
		MaxResults(maxResults).
		Order(string(order)).
		Context(ctx).
		Do()
	if err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: listing comments for %s: %w", domain.ErrUpstreamFailure, videoID, err)
	}

	observability.FetchRequests.WithLabelValues(fetchSource, statusOK).Inc()

	comments := make([]domain.Comment, 0, len(resp.Items))

	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil || item.Snippet.TopLevelComment.Snippet == nil {
			continue
		}

		snippet := item.Snippet.TopLevelComment.Snippet
		published, _ := time.Parse(time.RFC3339, snippet.PublishedAt)

		comments = append(comments, domain.Comment{
			Author:         snippet.AuthorDisplayName,
			Text:           snippet.TextOriginal,
			LikeCount:      snippet.LikeCount,
			PublishedAt:    published,
			AuthorImageURL: snippet.AuthorProfileImageUrl,
			Order:          order,
		})
	}

	return comments, nil
}

// VideoDetails returns the full metadata payload for one video, including
// channel statistics resolved with a second request.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (domain.VideoDetails, error) {
	resp, err := c.svc.Videos.List([]string{"snippet", "statistics", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return domain.VideoDetails{}, fmt.Errorf("%w: listing video %s: %w", domain.ErrUpstreamFailure, videoID, err)
	}

	observability.FetchRequests.WithLabelValues(fetchSource, statusOK).Inc()

	if len(resp.Items) == 0 {
		return domain.VideoDetails{}, fmt.Errorf("%w: video %s", domain.ErrNotFound, videoID)
	}

	return c.buildDetails(ctx, resp.Items[0])
}

// Search finds videos matching the query and resolves each hit to its full
// details. The returned token pages through further results.
func (c *Client) Search(ctx context.Context, query string, maxResults int64, pageToken string) ([]domain.VideoDetails, string, error) {
	call := c.svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		MaxResults(maxResults).
		Context(ctx)

	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, "", fmt.Errorf("%w: searching %q: %w", domain.ErrUpstreamFailure, query, err)
	}

	observability.FetchRequests.WithLabelValues(fetchSource, statusOK).Inc()

	results := make([]domain.VideoDetails, 0, len(resp.Items))

	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}

		details, err := c.VideoDetails(ctx, item.Id.VideoId)
		if err != nil {
			// One broken hit should not sink the whole result page.
			c.logger.Warn().Err(err).Str("video_id", item.Id.VideoId).Msg("skipping search hit")

			continue
		}

		results = append(results, details)
	}

	return results, resp.NextPageToken, nil
}

func (c *Client) buildDetails(ctx context.Context, item *youtube.Video) (domain.VideoDetails, error) {
	details := domain.VideoDetails{
		Title:     item.Snippet.Title,
		Channel:   item.Snippet.ChannelTitle,
		VideoLink: "https://www.youtube.com/watch?v=" + item.Id,
	}

	if item.Snippet.Description != "" {
		details.Description = item.Snippet.Description
	} else {
		details.Description = "No description available."
	}

	if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.High != nil {
		details.Thumbnail = item.Snippet.Thumbnails.High.Url
	}

	if published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		details.UploadDate = published.Truncate(24 * time.Hour)
	}

	if item.Statistics != nil {
		details.Views = int64(item.Statistics.ViewCount)
		details.Likes = int64(item.Statistics.LikeCount)
		details.CommentCount = int64(item.Statistics.CommentCount)

		if details.Views > 0 {
			details.LikesPercent = float64(details.Likes) / float64(details.Views) * 100
		}
	}

	if item.ContentDetails != nil {
		seconds, err := ParseDurationSeconds(item.ContentDetails.Duration)
		if err != nil {
			seconds = 0
		}

		details.Duration = FormatDuration(seconds)
	}

	c.attachChannel(ctx, &details, item.Snippet.ChannelId)

	return details, nil
}

// attachChannel fills in subscriber count and channel thumbnail; failures
// leave those fields zeroed rather than failing the lookup.
func (c *Client) attachChannel(ctx context.Context, details *domain.VideoDetails, channelID string) {
	if channelID == "" {
		return
	}

	resp, err := c.svc.Channels.List([]string{"snippet", "statistics"}).Id(channelID).Context(ctx).Do()
	if err != nil || len(resp.Items) == 0 {
		c.logger.Warn().Err(err).Str("channel_id", channelID).Msg("channel details unavailable")

		return
	}

	ch := resp.Items[0]
	if ch.Statistics != nil {
		details.Subscribers = int64(ch.Statistics.SubscriberCount)
	}

	if ch.Snippet != nil && ch.Snippet.Thumbnails != nil {
		switch {
		case ch.Snippet.Thumbnails.High != nil:
			details.ChannelThumbnail = ch.Snippet.Thumbnails.High.Url
		case ch.Snippet.Thumbnails.Medium != nil:
			details.ChannelThumbnail = ch.Snippet.Thumbnails.Medium.Url
		case ch.Snippet.Thumbnails.Default != nil:
			details.ChannelThumbnail = ch.Snippet.Thumbnails.Default.Url
		}
	}
}
