package pipeline

import (
	"regexp"
	"strings"
)

const (
	// contentWindow is the maximum cleaned-content length fed to the
	// analysis prompts. Longer documents keep their head and tail.
	contentWindow = 8000
	contentHalf   = 4000

	truncationMarker = "\n...[content truncated]...\n"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanContent collapses whitespace runs and bounds the text to the analysis
// window, preserving the start and end of oversized documents.
func cleanContent(content string) string {
	cleaned := strings.TrimSpace(whitespaceRun.ReplaceAllString(content, " "))
	if len(cleaned) <= contentWindow {
		return cleaned
	}
	return cleaned[:contentHalf] + truncationMarker + cleaned[len(cleaned)-contentHalf:]
}

// isHallDocument reports whether the document is attributed to Peter Hall,
// judged from the source metadata author, the content-derived authors, and
// the catalogue entry.
func isHallDocument(meta Metadata, contentAuthors, catalogueEntry string) bool {
	if author := strings.ToLower(meta.str("author", "Author")); author != "" {
		if strings.Contains(author, "hall") {
			return true
		}
	}
	if strings.Contains(strings.ToLower(contentAuthors), "hall") {
		return true
	}
	catalogue := strings.ToLower(catalogueEntry)
	for _, marker := range []string{
		"metadata author(s): peter hall",
		"content-derived author(s): peter hall",
		"author(s): peter hall",
		"author: peter hall",
	} {
		if strings.Contains(catalogue, marker) {
			return true
		}
	}
	return false
}
