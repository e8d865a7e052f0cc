package pipeline

import (
	"context"
	"fmt"
	"time"

	"archive-backend/internal/graphparse"
	"archive-backend/internal/llm/mistral"
	"archive-backend/internal/shared/telemetry"
)

// embeddingTextLimit bounds the text sent to the embeddings endpoint.
const embeddingTextLimit = 25000

// buildEmbeddingText combines the heaviest-signal fields into a single
// embedding input with per-field caps.
func buildEmbeddingText(res Result) string {
	return head(fmt.Sprintf("Title: %s\n\nDescription: %s\n\nInitial Analysis: %s\n\nDetailed Analysis: %s",
		res.ContentTitle,
		head(res.CatalogueEntry, 500),
		head(res.InitialAnalysis, 1000),
		head(res.DetailedAnalysis, 2000),
	), embeddingTextLimit)
}

// zeroVector is the embedding placeholder stored when the embeddings call
// fails: the record stays structurally complete and can be re-embedded later.
func zeroVector() []float64 {
	return make([]float64, mistral.EmbeddingDimensions)
}

func (a *Analyzer) embed(ctx context.Context, text string, meta Metadata) []float64 {
	vector, err := a.llm.Embed(ctx, text)
	if err != nil {
		telemetry.Warn("pipeline.embedding_degraded", map[string]any{"file": meta.FileName(), "err": err.Error()})
		return zeroVector()
	}
	return vector
}

func embeddingMetadata(vector []float64) map[string]any {
	return map[string]any{
		"model":               "mistral-embed",
		"dimensions":          len(vector),
		"original_dimensions": mistral.EmbeddingDimensions,
		"padded":              len(vector) != mistral.EmbeddingDimensions,
		"created_at":          time.Now().UTC().Format(time.RFC3339),
		"api_version":         "v1",
	}
}

func graphMetadata(entities map[string][]string, relationships []graphparse.Relationship) map[string]any {
	total := 0
	countsByType := make(map[string]int, len(entities))
	var types []string
	for _, category := range graphparse.Categories {
		n := len(entities[category])
		total += n
		countsByType[category] = n
		if n > 0 {
			types = append(types, category)
		}
	}
	return map[string]any{
		"total_entities":        total,
		"total_relationships":   len(relationships),
		"entity_types":          types,
		"entity_counts_by_type": countsByType,
		"extraction_date":       time.Now().UTC().Format(time.RFC3339),
		"domain":                "urban_planning",
		"extraction_method":     "mistral_api_llm",
	}
}
