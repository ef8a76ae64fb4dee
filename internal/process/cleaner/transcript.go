package cleaner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tubelens/tubelens/internal/core/domain"
)

var (
	// A (HH:MM:SS) marker as produced by FormatSegments.
	markerRe = regexp.MustCompile(`\(\d{2}:\d{2}:\d{2}\)`)

	whitespaceRe = regexp.MustCompile(`\s+`)

	// One timestamped piece of the formatted transcript: the marker plus the
	// text up to the next marker.
	segmentRe = regexp.MustCompile(`\((\d{2}):(\d{2}):(\d{2})\)([^(]*)`)
)

// FormatSegments renders caption segments as a single space-joined string
// where each segment is prefixed with its (HH:MM:SS) start marker. This is
// the timestamped transcript form used for summaries and time-range lookup.
func FormatSegments(segments []domain.CaptionSegment) string {
	lines := make([]string, 0, len(segments))

	for _, seg := range segments {
		total := int(seg.Start)
		hours := total / 3600
		minutes := (total % 3600) / 60
		seconds := total % 60

		lines = append(lines, fmt.Sprintf("(%02d:%02d:%02d) %s", hours, minutes, seconds, seg.Text))
	}

	return strings.Join(lines, " ")
}

// StripTimestamps removes the (HH:MM:SS) markers and collapses whitespace,
// yielding the clean transcript form used for chunking and embedding.
func StripTimestamps(withTimestamps string) string {
	clean := markerRe.ReplaceAllString(withTimestamps, "")

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))
}

// Segment extracts the part of a timestamped transcript whose markers fall
// inside [start, end] seconds. A nil bound leaves that side open; with both
// bounds nil the full transcript is returned. Scanning stops at the first
// marker past end, so out-of-order markers after that point are not included.
func Segment(withTimestamps string, start, end *int) string {
	if start == nil && end == nil {
		return withTimestamps
	}

	matches := segmentRe.FindAllStringSubmatch(withTimestamps, -1)
	pieces := make([]string, 0, len(matches))

	for _, m := range matches {
		seconds := atoiUnchecked(m[1])*3600 + atoiUnchecked(m[2])*60 + atoiUnchecked(m[3])

		if start != nil && seconds < *start {
			continue
		}

		if end != nil && seconds > *end {
			break
		}

		pieces = append(pieces, fmt.Sprintf("(%s:%s:%s) %s", m[1], m[2], m[3], strings.TrimSpace(m[4])))
	}

	return strings.Join(pieces, " ")
}

// atoiUnchecked converts a digits-only string already validated by the
// segment regexp.
func atoiUnchecked(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}

	return n
}
