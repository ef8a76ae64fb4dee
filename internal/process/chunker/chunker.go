// Package chunker splits normalized text into retrieval-sized chunks.
package chunker

import "strings"

// GroupLines joins consecutive lines into newline-separated chunks of at most
// size lines each. Used for cleaned comments, where one line is one comment.
func GroupLines(lines []string, size int) []string {
	if len(lines) == 0 || size <= 0 {
		return nil
	}

	chunks := make([]string, 0, (len(lines)+size-1)/size)

	for i := 0; i < len(lines); i += size {
		end := i + size
		if end > len(lines) {
			end = len(lines)
		}

		chunks = append(chunks, strings.Join(lines[i:end], "\n"))
	}

	return chunks
}

// WindowWords splits text into overlapping windows of size words advancing by
// size-overlap each step. The final partial window is included, then
// chunking stops: once a window reaches the end of the text no further
// windows are produced.
func WindowWords(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 || size <= 0 {
		return nil
	}

	step := size - overlap
	if step <= 0 {
		step = size
	}

	var chunks []string

	for i := 0; i < len(words); i += step {
		end := i + size
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, strings.Join(words[i:end], " "))

		if i+size >= len(words) {
			break
		}
	}

	return chunks
}
