// Package captions fetches caption tracks through the Innertube player
// endpoint and parses them into timed segments. The ANDROID client is used
// because its player response carries caption URLs fetchable without a
// browser session.
package captions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tubelens/tubelens/internal/core/domain"
	"github.com/tubelens/tubelens/internal/platform/observability"
)

const (
	defaultPlayerURL = "https://www.youtube.com/youtubei/v1/player"
	androidVersion   = "20.10.38"
	androidUA        = "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip"

	maxPlayerBody = 3 * 1024 * 1024

	// Multi-hour auto-caption tracks run to several megabytes of XML.
	maxTimedTextBody = 8 * 1024 * 1024

	fetchSource = "captions"

	statusOK    = "ok"
	statusError = "error"
)

type innertubeReq struct {
	VideoID        string       `json:"videoId"`
	Context        innertubeCtx `json:"context"`
	RacyCheckOk    bool         `json:"racyCheckOk"`
	ContentCheckOk bool         `json:"contentCheckOk"`
}

type innertubeCtx struct {
	Client innertubeClient `json:"client"`
}

type innertubeClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResp struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []Track `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

// Track is one caption track from the player response.
type Track struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

// Client fetches caption segments for videos.
type Client struct {
	httpClient     *http.Client
	playerURL      string
	preferredLangs []string
	logger         *zerolog.Logger
}

// Config holds the caption client settings.
type Config struct {
	// PreferredLangs is the track language priority. Auto-generated tracks
	// are keyed as languageCode+"-orig", so "en-orig" prefers the original
	// auto track over a translated manual one.
	PreferredLangs []string

	// Timeout for player and timedtext requests.
	Timeout time.Duration

	// PlayerURL overrides the Innertube endpoint, for tests.
	PlayerURL string
}

func New(cfg Config, logger *zerolog.Logger) *Client {
	if len(cfg.PreferredLangs) == 0 {
		cfg.PreferredLangs = []string{"en-orig", "en"}
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	if cfg.PlayerURL == "" {
		cfg.PlayerURL = defaultPlayerURL
	}

	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		playerURL:      cfg.PlayerURL,
		preferredLangs: cfg.PreferredLangs,
		logger:         logger,
	}
}

// Captions returns the timed segments of the best caption track for the
// video. A video without any usable track returns an empty slice and no
// error; transport and decode failures are ErrUpstreamFailure.
func (c *Client) Captions(ctx context.Context, videoID string) ([]domain.CaptionSegment, error) {
	tracks, err := c.listTracks(ctx, videoID)
	if err != nil {
		return nil, err
	}

	track, ok := PickTrack(tracks, c.preferredLangs)
	if !ok {
		c.logger.Debug().Str("video_id", videoID).Int("tracks", len(tracks)).Msg("no usable caption track")

		return []domain.CaptionSegment{}, nil
	}

	segments, err := c.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	return segments, nil
}

func (c *Client) listTracks(ctx context.Context, videoID string) ([]Track, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal player request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.playerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("build player request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", androidVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: player request: %w", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: player request: HTTP %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	var player playerResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPlayerBody)).Decode(&player); err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: decode player response: %w", domain.ErrUpstreamFailure, err)
	}

	observability.FetchRequests.WithLabelValues(fetchSource, statusOK).Inc()

	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			c.logger.Debug().Str("video_id", videoID).Str("reason", player.PlayabilityStatus.Reason).Msg("captions unavailable")
		}

		return nil, nil
	}

	return player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, nil
}

func (c *Client) fetchTimedText(ctx context.Context, baseURL string) ([]domain.CaptionSegment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build timedtext request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: fetch timedtext: %w", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: fetch timedtext: HTTP %d", domain.ErrUpstreamFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTimedTextBody+1))
	if err != nil {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: read timedtext: %w", domain.ErrUpstreamFailure, err)
	}

	if len(body) > maxTimedTextBody {
		observability.FetchRequests.WithLabelValues(fetchSource, statusError).Inc()

		return nil, fmt.Errorf("%w: timedtext body exceeds %d bytes", domain.ErrUpstreamFailure, maxTimedTextBody)
	}

	observability.FetchRequests.WithLabelValues(fetchSource, statusOK).Inc()

	segments, err := ParseTimedText(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamFailure, err)
	}

	return segments, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken and is
// therefore only fetchable from a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// trackKey is the language key a track is matched under: auto-generated
// tracks get an "-orig" suffix.
func trackKey(t Track) string {
	if t.Kind == "asr" {
		return t.LanguageCode + "-orig"
	}

	return t.LanguageCode
}

// PickTrack selects the caption track to use: the first preferred language
// key that has a usable track, otherwise the first usable track in any other
// language. Live chat pseudo-tracks and PoToken-gated tracks are never
// picked.
func PickTrack(tracks []Track, preferredLangs []string) (Track, bool) {
	usable := make([]Track, 0, len(tracks))

	for _, t := range tracks {
		if t.BaseURL == "" || needsPoToken(t.BaseURL) {
			continue
		}

		if strings.Contains(t.LanguageCode, "live_chat") {
			continue
		}

		usable = append(usable, t)
	}

	for _, lang := range preferredLangs {
		for _, t := range usable {
			if trackKey(t) == lang {
				return t, true
			}
		}
	}

	if len(usable) > 0 {
		return usable[0], true
	}

	return Track{}, false
}
