// Package cleaner normalizes raw comments and caption tracks into the text
// forms the downstream stages consume.
package cleaner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tubelens/tubelens/internal/core/domain"
)

var (
	linkRe = regexp.MustCompile(`https?://\S+|www\.\S+`)

	// A bare timestamp like 1:23, 12:34:56 or 1:02:03:04.
	timestampRe = regexp.MustCompile(`\d{1,2}(:\d{2}){1,3}`)

	// A chapter-list line: timestamp at line start followed by a label.
	chapterLineRe = regexp.MustCompile(`(?m)^\s*\d{1,2}(:\d{2}){1,3}[\s\x{200B}]*[-:|]*[\s\x{200B}]+[a-zA-Z]{2,}.*$`)

	codeKeywordRe   = regexp.MustCompile(`\b(def|class|return|import|lambda|function|const|var|=>|try|except|elif)\b`)
	codeStructureRe = regexp.MustCompile(`==|===|\{|\}|\[|\]|::|->|=`)
	indentedLineRe  = regexp.MustCompile(`(?m)^\s{4,}`)
)

const (
	maxBareTimestamps = 3
	maxChapterLines   = 3
	codeHeavyCutoff   = 5
)

// Render produces the canonical text form of a comment that all later stages
// operate on.
func Render(c domain.Comment) string {
	return fmt.Sprintf("%s: %s (Likes: %d)", c.Author, c.Text, c.LikeCount)
}

// RemoveLinks strips URLs from the text and trims surrounding whitespace.
func RemoveLinks(text string) string {
	return strings.TrimSpace(linkRe.ReplaceAllString(text, ""))
}

// hasMultipleTimestamps reports whether the text carries more than three bare
// timestamps, the signature of timestamp spam.
func hasMultipleTimestamps(text string) bool {
	return len(timestampRe.FindAllString(text, -1)) > maxBareTimestamps
}

// hasChapterLines reports whether the text looks like a legitimate chapter
// list: more than three lines each starting with a timestamp followed by a
// description.
func hasChapterLines(text string) bool {
	return len(chapterLineRe.FindAllString(text, -1)) > maxChapterLines
}

// codeHeavyScore rates how much the text resembles pasted source code.
func codeHeavyScore(text string) int {
	text = strings.TrimSpace(text)

	keywords := len(codeKeywordRe.FindAllString(text, -1))
	structures := len(codeStructureRe.FindAllString(text, -1))
	indented := len(indentedLineRe.FindAllString(text, -1))
	lines := strings.Count(text, "\n") + 1

	score := 0
	if keywords >= 2 {
		score += 2
	}

	if structures >= 3 {
		score += 2
	}

	if indented >= 2 {
		score += 2
	}

	if lines >= 3 {
		score++
	}

	if keywords > 0 && structures > 0 {
		score++
	}

	return score
}

// IsCodeHeavy reports whether the text crosses the code-dump rejection cutoff.
func IsCodeHeavy(text string) bool {
	return codeHeavyScore(text) >= codeHeavyCutoff
}

// Clean strips links and applies the rejection filters. The second return is
// false when the comment should be dropped: code dumps, timestamp spam that
// is not a chapter list, and comments that are empty once trimmed.
func Clean(text string) (string, bool) {
	text = RemoveLinks(text)

	if IsCodeHeavy(text) {
		return "", false
	}

	if hasMultipleTimestamps(text) && !hasChapterLines(text) {
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	return text, true
}

// CleanAll renders and filters a batch of comments, preserving input order.
func CleanAll(comments []domain.Comment) []string {
	cleaned := make([]string, 0, len(comments))

	for _, c := range comments {
		if text, ok := Clean(Render(c)); ok {
			cleaned = append(cleaned, text)
		}
	}

	return cleaned
}
