package main

// Run the analysis pipeline against a local document:
//   go run ./cmd/analyze -file report.pdf -complete

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"archive-backend/internal/extract"
	"archive-backend/internal/llm/mistral"
	"archive-backend/internal/pipeline"
	"archive-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	filePath := flag.String("file", "", "Path to document file (pdf, docx or txt)")
	model := flag.String("model", cfg.MistralModel, "Mistral model")
	complete := flag.Bool("complete", false, "Run the complete pipeline with embeddings and graph extraction")
	outPath := flag.String("out", "", "Path to write raw JSON output (optional)")
	flag.Parse()

	if strings.TrimSpace(*filePath) == "" {
		exitErr("file path is required")
	}

	ctx := context.Background()

	text, err := extract.ExtractFile(ctx, *filePath)
	if err != nil {
		exitErr(err.Error())
	}

	client, err := mistral.NewClient(cfg.MistralAPIKey, *model, time.Duration(cfg.MistralTimeout)*time.Second)
	if err != nil {
		exitErr(err.Error())
	}

	analyzer := pipeline.New(client, *model)
	meta := pipeline.Metadata{"file_name": filepath.Base(*filePath)}

	var result any
	if *complete {
		result = analyzer.AnalyzeComplete(ctx, text, meta)
	} else {
		result = analyzer.Analyze(ctx, text, meta)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		exitErr(fmt.Sprintf("encode result: %v", err))
	}

	pretty, err := prettyJSON(raw)
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}

	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
	if len(pretty) == 0 || pretty[len(pretty)-1] != '\n' {
		_, _ = os.Stdout.Write([]byte("\n"))
	}
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, "error:", msg)
	os.Exit(1)
}
