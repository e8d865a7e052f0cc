// Package pipeline runs the multi-step document analysis: content extraction,
// layered analyses, catalogue generation, and the extended vector/graph pass.
// Primary steps short-circuit into an error result with a keyword fallback;
// auxiliary steps degrade to empty output and never fail the run.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"archive-backend/internal/graphparse"
	"archive-backend/internal/llm"
	"archive-backend/internal/shared/telemetry"
)

// Analyzer orchestrates LLM calls for a single document. The zero value is
// unusable; construct with New.
type Analyzer struct {
	llm   llm.Client
	model string
}

func New(client llm.Client, model string) *Analyzer {
	return &Analyzer{llm: client, model: model}
}

type extractedInfo struct {
	title   string
	authors string
	date    string
}

const extractionMissing = "Not found in document content"

// Analyze runs the standard pipeline and returns all primary and auxiliary
// fields. A failure in a primary step returns an error result carrying the
// keyword fallback; the returned error is always nil so callers can persist
// the degraded shape.
func (a *Analyzer) Analyze(ctx context.Context, content string, meta Metadata) Result {
	content = cleanContent(content)

	ext, err := a.extractContentInfo(ctx, content)
	if err != nil {
		return a.errorResult(content, fmt.Sprintf("Error: content extraction failed: %v", err))
	}

	initial, err := a.complete(ctx, initialAnalysisPrompt(content, meta), 400, 0)
	if err != nil {
		return a.errorResult(content, fmt.Sprintf("Error: initial analysis failed: %v", err))
	}

	detailed, err := a.complete(ctx, detailedAnalysisPrompt(content, initial), 1000, 0)
	if err != nil {
		return a.errorResult(content, fmt.Sprintf("Error: detailed analysis failed: %v", err))
	}

	classification, err := a.complete(ctx, classificationPrompt(detailed), 400, 0)
	if err != nil {
		return a.errorResult(content, fmt.Sprintf("Error: classification failed: %v", err))
	}

	catalogue, err := a.generateCatalogueEntry(ctx, content, detailed, classification, meta, ext)
	if err != nil {
		return a.errorResult(content, fmt.Sprintf("Error: catalogue entry failed: %v", err))
	}

	final, err := a.generateFinalAnalysis(ctx, content, detailed, classification, meta)
	if err != nil {
		// The synthesis step degrades to its error text rather than
		// discarding the completed core analyses.
		telemetry.Warn("pipeline.final_analysis_degraded", map[string]any{"file": meta.FileName(), "err": err.Error()})
		final = fmt.Sprintf("Document processing failed: %v", err)
	}

	res := Result{
		ContentTitle:         ext.title,
		ContentAuthors:       ext.authors,
		ContentDate:          ext.date,
		InitialAnalysis:      initial,
		DetailedAnalysis:     detailed,
		Classification:       classification,
		CatalogueEntry:       catalogue,
		FinalAnalysis:        final,
		WritingStyleAnalysis: a.auxiliary(ctx, meta, "writing_style", writingStylePrompt(content), 800, 0.2),
		AnalyticalFrameworks: a.auxiliary(ctx, meta, "analytical_frameworks", frameworksPrompt(content, detailed), 800, 0.2),
		QAPairs:              a.auxiliary(ctx, meta, "qa_pairs", qaPrompt(content, detailed, classification), 1500, 0.3),
		ComparativeAnalyses:  a.auxiliary(ctx, meta, "comparative_analyses", comparativePrompt(content, detailed), 800, 0.2),
	}
	if isHallDocument(meta, ext.authors, catalogue) {
		res.IsHallDocument = 1
	}
	return res
}

// AnalyzeComplete runs the standard pipeline plus the vector and graph
// extension. The extension runs even when the core produced an error result,
// so degraded records still carry an embedding placeholder and empty graph.
func (a *Analyzer) AnalyzeComplete(ctx context.Context, content string, meta Metadata) CompleteResult {
	base := a.Analyze(ctx, content, meta)

	vector := a.embed(ctx, buildEmbeddingText(base), meta)

	entities := a.extractEntities(ctx, base, meta)
	relationships := a.extractRelationships(ctx, entities, base, meta)

	return CompleteResult{
		Result:            base,
		EmbeddingVector:   vector,
		EmbeddingMetadata: embeddingMetadata(vector),
		Entities:          entities,
		Relationships:     relationships,
		GraphMetadata:     graphMetadata(entities, relationships),
	}
}

func (a *Analyzer) errorResult(content, errMsg string) Result {
	telemetry.Error("pipeline.failed", map[string]any{"err": errMsg})
	fallback := keywordFallback(content)
	return Result{
		ContentTitle:     "Analysis Failed",
		ContentAuthors:   "Unknown",
		InitialAnalysis:  fallback,
		FinalAnalysis:    errMsg,
		Error:            errMsg,
		FallbackAnalysis: fallback,
	}
}

func (a *Analyzer) complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	return a.llm.Complete(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Model:       a.model,
	})
}

// auxiliary runs a non-fatal step. Failures log and yield an empty string.
func (a *Analyzer) auxiliary(ctx context.Context, meta Metadata, step, prompt string, maxTokens int, temperature float64) string {
	out, err := a.complete(ctx, prompt, maxTokens, temperature)
	if err != nil {
		telemetry.Warn("pipeline.auxiliary_degraded", map[string]any{
			"step": step,
			"file": meta.FileName(),
			"err":  err.Error(),
		})
		return ""
	}
	return out
}

func (a *Analyzer) extractContentInfo(ctx context.Context, content string) (extractedInfo, error) {
	out, err := a.complete(ctx, extractionPrompt(content), 300, 0)
	if err != nil {
		return extractedInfo{}, err
	}

	ext := extractedInfo{
		title:   extractionMissing,
		authors: extractionMissing,
		date:    extractionMissing,
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "CONTENT_TITLE:"):
			ext.title = strings.TrimSpace(strings.TrimPrefix(line, "CONTENT_TITLE:"))
		case strings.HasPrefix(line, "CONTENT_AUTHORS:"):
			ext.authors = strings.TrimSpace(strings.TrimPrefix(line, "CONTENT_AUTHORS:"))
		case strings.HasPrefix(line, "CONTENT_DATE:"):
			ext.date = strings.TrimSpace(strings.TrimPrefix(line, "CONTENT_DATE:"))
		}
	}
	return ext, nil
}

// generateCatalogueEntry first runs the confidentiality assessment, then
// feeds it into the catalogue prompt so access levels land in the entry.
func (a *Analyzer) generateCatalogueEntry(ctx context.Context, content, detailed, classification string, meta Metadata, ext extractedInfo) (string, error) {
	confidentiality, err := a.complete(ctx, confidentialityPrompt(content, detailed, classification), 200, 0)
	if err != nil {
		return "", err
	}
	return a.complete(ctx, cataloguePrompt(meta, ext, detailed, classification, confidentiality), 800, 0)
}

func (a *Analyzer) generateFinalAnalysis(ctx context.Context, content, detailed, classification string, meta Metadata) (string, error) {
	return a.complete(ctx, finalAnalysisPrompt(meta, content, detailed, classification), 800, 0.3)
}

func (a *Analyzer) extractEntities(ctx context.Context, base Result, meta Metadata) map[string][]string {
	out, err := a.complete(ctx, entityPrompt(base.InitialAnalysis, base.DetailedAnalysis, base.CatalogueEntry), 800, 0.2)
	if err != nil {
		telemetry.Warn("pipeline.entities_degraded", map[string]any{"file": meta.FileName(), "err": err.Error()})
		return graphparse.Entities("")
	}
	return graphparse.Entities(out)
}

func (a *Analyzer) extractRelationships(ctx context.Context, entities map[string][]string, base Result, meta Metadata) []graphparse.Relationship {
	names := entityNames(entities)
	if len(names) == 0 {
		return []graphparse.Relationship{}
	}
	out, err := a.complete(ctx, relationshipPrompt(names, base.InitialAnalysis, base.DetailedAnalysis), 600, 0.2)
	if err != nil {
		telemetry.Warn("pipeline.relationships_degraded", map[string]any{"file": meta.FileName(), "err": err.Error()})
		return []graphparse.Relationship{}
	}
	return graphparse.Relationships(out)
}

// entityNames flattens entities for the relationship prompt, capped at ten
// per category and thirty overall.
func entityNames(entities map[string][]string) []string {
	var names []string
	for _, category := range graphparse.Categories {
		list := entities[category]
		if len(list) > 10 {
			list = list[:10]
		}
		names = append(names, list...)
	}
	if len(names) > 30 {
		names = names[:30]
	}
	return names
}
