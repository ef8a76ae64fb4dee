package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		size  int
		want  []string
	}{
		{
			name:  "empty input",
			lines: nil,
			size:  20,
			want:  nil,
		},
		{
			name:  "single partial group",
			lines: []string{"a", "b", "c"},
			size:  20,
			want:  []string{"a\nb\nc"},
		},
		{
			name:  "exact multiple",
			lines: []string{"a", "b", "c", "d"},
			size:  2,
			want:  []string{"a\nb", "c\nd"},
		},
		{
			name:  "trailing partial group",
			lines: []string{"a", "b", "c", "d", "e"},
			size:  2,
			want:  []string{"a\nb", "c\nd", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GroupLines(tt.lines, tt.size))
		})
	}
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}

	return strings.Join(parts, " ")
}

func TestWindowWordsSingleChunkWhenTextFits(t *testing.T) {
	chunks := WindowWords(words(1000), 1000, 200)

	require.Len(t, chunks, 1)
	assert.Equal(t, 1000, len(strings.Fields(chunks[0])))
}

func TestWindowWordsOverlap(t *testing.T) {
	chunks := WindowWords(words(1300), 1000, 200)

	require.Len(t, chunks, 2)

	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])

	assert.Equal(t, 1000, len(first))
	assert.Equal(t, 500, len(second))

	// Second window starts size-overlap words in, so the last 200 words of
	// the first window open the second.
	assert.Equal(t, "w800", second[0])
	assert.Equal(t, first[800:], second[:200])
	assert.Equal(t, "w1299", second[len(second)-1])
}

func TestWindowWordsStopsAfterFinalWindow(t *testing.T) {
	// 1800 words: windows at 0 and 800; the window at 800 reaches the end,
	// so no window at 1600 is produced.
	chunks := WindowWords(words(1800), 1000, 200)

	require.Len(t, chunks, 2)
	assert.Equal(t, 1000, len(strings.Fields(chunks[1])))
	assert.Equal(t, "w1799", strings.Fields(chunks[1])[999])
}

func TestWindowWordsEmptyText(t *testing.T) {
	assert.Nil(t, WindowWords("", 1000, 200))
	assert.Nil(t, WindowWords("   ", 1000, 200))
}

func TestWindowWordsDegenerateOverlap(t *testing.T) {
	// overlap >= size must not loop forever; step falls back to size.
	chunks := WindowWords(words(10), 4, 4)

	require.Len(t, chunks, 3)
	assert.Equal(t, "w0 w1 w2 w3", chunks[0])
	assert.Equal(t, "w4 w5 w6 w7", chunks[1])
	assert.Equal(t, "w8 w9", chunks[2])
}
