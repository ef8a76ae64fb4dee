package captions

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/tubelens/tubelens/internal/core/domain"
)

type timedText struct {
	Lines []timedLine `xml:"text"`
}

type timedLine struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

// ParseTimedText parses a timedtext XML document into caption segments.
// Newlines within a cue become spaces; cues with unparseable start times are
// an error, a missing duration defaults to zero.
func ParseTimedText(body []byte) ([]domain.CaptionSegment, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]domain.CaptionSegment, 0, len(tt.Lines))

	for _, line := range tt.Lines {
		start, err := strconv.ParseFloat(line.Start, 64)
		if err != nil {
			return nil, fmt.Errorf("parse timedtext start %q: %w", line.Start, err)
		}

		dur := 0.0
		if line.Dur != "" {
			if dur, err = strconv.ParseFloat(line.Dur, 64); err != nil {
				return nil, fmt.Errorf("parse timedtext dur %q: %w", line.Dur, err)
			}
		}

		segments = append(segments, domain.CaptionSegment{
			Start:    start,
			Duration: dur,
			Text:     strings.ReplaceAll(line.Text, "\n", " "),
		})
	}

	return segments, nil
}
