// Package domain holds the shared data types and error taxonomy for the
// comment and transcript analysis pipelines.
package domain

import "time"

// CommentOrder records which sort order a comment request used.
type CommentOrder string

const (
	OrderRelevance CommentOrder = "relevance"
	OrderTime      CommentOrder = "time"
)

// Comment is a single top-level comment as returned by the video platform.
type Comment struct {
	Author         string       `json:"author"`
	Text           string       `json:"text"`
	LikeCount      int64        `json:"like_count"`
	PublishedAt    time.Time    `json:"published_at"`
	AuthorImageURL string       `json:"author_image_url"`
	Order          CommentOrder `json:"sort_by"`
}

// CaptionSegment is one caption cue with its timing.
// Start and Duration are in seconds.
type CaptionSegment struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
}

// Transcript is the normalized form of a caption track. WithTimestamps is the
// full text with a leading (HH:MM:SS) marker per segment, joined by single
// spaces; Clean is the same text with markers removed and whitespace collapsed.
// The timestamped form feeds the summarizer and time-range lookups, the clean
// form feeds chunking and embedding.
type Transcript struct {
	WithTimestamps string `json:"with_timestamps"`
	Clean          string `json:"clean"`
}

// VideoStats is the subset of video statistics the pipelines need.
type VideoStats struct {
	Title        string
	Views        int64
	Likes        int64
	CommentCount int64
}

// VideoDetails is the metadata payload for search results and the video
// details endpoint.
type VideoDetails struct {
	Title            string    `json:"title"`
	Channel          string    `json:"channel"`
	Subscribers      int64     `json:"subscribers"`
	Views            int64     `json:"views"`
	Likes            int64     `json:"likes"`
	LikesPercent     float64   `json:"likes_percent"`
	Duration         string    `json:"duration"`
	UploadDate       time.Time `json:"upload_date"`
	CommentCount     int64     `json:"comments"`
	VideoLink        string    `json:"video_link"`
	Thumbnail        string    `json:"thumbnail"`
	ChannelThumbnail string    `json:"channel_thumbnail"`
	Description      string    `json:"description"`
}
