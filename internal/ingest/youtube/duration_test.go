package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		iso     string
		want    int
		wantErr bool
	}{
		{iso: "", want: 0},
		{iso: "PT0S", want: 0},
		{iso: "PT45S", want: 45},
		{iso: "PT2M3S", want: 123},
		{iso: "PT1H2M3S", want: 3723},
		{iso: "PT3H", want: 10800},
		{iso: "P1DT2H", want: 93600},
		{iso: "banana", wantErr: true},
		{iso: "1H2M", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.iso, func(t *testing.T) {
			got, err := ParseDurationSeconds(tt.iso)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "00:02:03", FormatDuration(123))
	assert.Equal(t, "01:01:01", FormatDuration(3661))
	assert.Equal(t, "26:00:00", FormatDuration(93600))
}
