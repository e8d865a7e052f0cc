package pipeline

import (
	"strings"

	"archive-backend/internal/graphparse"
)

// Result is the transient output of the standard analysis pipeline. It lives
// only until persisted into a queue record or returned to a synchronous
// caller.
type Result struct {
	ContentTitle         string `json:"content_title"`
	ContentAuthors       string `json:"content_authors"`
	ContentDate          string `json:"content_date"`
	InitialAnalysis      string `json:"initial_analysis"`
	DetailedAnalysis     string `json:"detailed_analysis"`
	Classification       string `json:"classification"`
	CatalogueEntry       string `json:"catalogue_entry"`
	FinalAnalysis        string `json:"final_analysis"`
	WritingStyleAnalysis string `json:"writing_style_analysis"`
	AnalyticalFrameworks string `json:"analytical_frameworks"`
	QAPairs              string `json:"qa_pairs"`
	ComparativeAnalyses  string `json:"comparative_analyses"`
	IsHallDocument       int    `json:"is_hall_document"`

	Error            string `json:"error,omitempty"`
	FallbackAnalysis string `json:"fallback_analysis,omitempty"`
}

// Failed reports whether the pipeline short-circuited with an error result.
func (r Result) Failed() bool {
	return r.Error != ""
}

// CompleteResult extends Result with vector and graph fields.
type CompleteResult struct {
	Result

	EmbeddingVector   []float64                 `json:"embedding_vector_pg"`
	EmbeddingMetadata map[string]any            `json:"embedding_metadata"`
	Entities          map[string][]string       `json:"entities"`
	Relationships     []graphparse.Relationship `json:"relationships"`
	GraphMetadata     map[string]any            `json:"graph_metadata"`
}

// Metadata carries caller-supplied document attributes (file_name, file_type,
// word_count, author, title, ...).
type Metadata map[string]any

func (m Metadata) str(keys ...string) string {
	for _, key := range keys {
		if raw, ok := m[key]; ok {
			if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	return ""
}

func (m Metadata) wordCount() int {
	raw, ok := m["word_count"]
	if !ok {
		return 0
	}
	switch v := raw.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// FileName returns the metadata file name or "unknown".
func (m Metadata) FileName() string {
	if name := m.str("file_name"); name != "" {
		return name
	}
	return "unknown"
}
