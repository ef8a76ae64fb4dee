package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

// videoDurationRe covers the PnDTnHnMnS subset the Data API emits for video
// durations.
var videoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDurationSeconds converts an ISO-8601 video duration like PT1H2M3S into
// total seconds. Returns 0 for empty input.
func ParseDurationSeconds(iso string) (int, error) {
	if iso == "" {
		return 0, nil
	}

	m := videoDurationRe.FindStringSubmatch(iso)
	if m == nil {
		return 0, fmt.Errorf("malformed duration %q", iso)
	}

	days := atoiOrZero(m[1])
	hours := atoiOrZero(m[2])
	minutes := atoiOrZero(m[3])
	seconds := atoiOrZero(m[4])

	return ((days*24+hours)*60+minutes)*60 + seconds, nil
}

// FormatDuration renders total seconds as HH:MM:SS. Durations of a day or
// more keep accumulating in the hours field.
func FormatDuration(totalSeconds int) string {
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}

	n, _ := strconv.Atoi(s)

	return n
}
