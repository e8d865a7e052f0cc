package analyses

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"archive-backend/internal/history"
	"archive-backend/internal/pipeline"
	"archive-backend/internal/queue"
)

// fakeStore emulates the record store's REST surface for one queue record.
type fakeStore struct {
	mu      sync.Mutex
	status  string
	patches []map[string]any
}

func (f *fakeStore) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			fmt.Fprintf(w, `[{"status":%q}]`, f.status)
		case http.MethodPatch:
			body, _ := io.ReadAll(r.Body)
			var fields map[string]any
			if err := json.Unmarshal(body, &fields); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if s, ok := fields["status"].(string); ok {
				f.status = s
			}
			f.patches = append(f.patches, fields)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func (f *fakeStore) patchStatuses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.patches))
	for _, p := range f.patches {
		if s, ok := p["status"].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestProcessQueuedHappyPath(t *testing.T) {
	store := &fakeStore{status: "ocr_complete"}
	srv := httptest.NewServer(store.handler())
	t.Cleanup(srv.Close)

	fake := &fakeLLM{}
	svc := &Service{
		Analyzer: pipeline.New(fake, "test-model"),
		Queue:    queue.NewGateway(srv.URL, "service-key"),
		History:  history.NewMemoryStore(),
	}

	svc.ProcessQueued(context.Background(), "q1", "document text", map[string]any{"file_name": "doc.pdf"}, history.TriggerWebhook)

	statuses := store.patchStatuses()
	if len(statuses) != 2 || statuses[0] != "analysis_in_progress" || statuses[1] != "analysis_complete" {
		t.Fatalf("patch statuses = %v", statuses)
	}

	store.mu.Lock()
	final := store.patches[1]
	store.mu.Unlock()
	if final["content_title"] != "Test Doc" {
		t.Errorf("content_title = %v", final["content_title"])
	}
	if final["completed_at"] == nil {
		t.Error("expected completed_at")
	}
	if vec, ok := final["embedding_vector_pg"].([]any); !ok || len(vec) != 1024 {
		t.Errorf("embedding vector missing or wrong length")
	}

	entries, err := svc.History.ListByQueueID(context.Background(), "q1", 10)
	if err != nil || len(entries) != 1 {
		t.Fatalf("history = %v, err = %v", entries, err)
	}
	if entries[0].Trigger != history.TriggerWebhook || entries[0].Status != "analysis_complete" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestProcessQueuedSkipsWhenStatusMoved(t *testing.T) {
	store := &fakeStore{status: "analysis_in_progress"}
	srv := httptest.NewServer(store.handler())
	t.Cleanup(srv.Close)

	fake := &fakeLLM{}
	svc := &Service{
		Analyzer: pipeline.New(fake, "test-model"),
		Queue:    queue.NewGateway(srv.URL, "service-key"),
	}

	svc.ProcessQueued(context.Background(), "q1", "text", nil, history.TriggerAsync)

	if fake.completions != 0 {
		t.Errorf("expected no LLM calls on skip, got %d", fake.completions)
	}
	if len(store.patchStatuses()) != 0 {
		t.Errorf("expected no updates on skip, got %v", store.patchStatuses())
	}
}

func TestProcessQueuedMarksFailed(t *testing.T) {
	store := &fakeStore{status: "ocr_complete"}
	srv := httptest.NewServer(store.handler())
	t.Cleanup(srv.Close)

	fake := &fakeLLM{fail: true}
	svc := &Service{
		Analyzer: pipeline.New(fake, "test-model"),
		Queue:    queue.NewGateway(srv.URL, "service-key"),
		History:  history.NewMemoryStore(),
	}

	svc.ProcessQueued(context.Background(), "q1", "text", nil, history.TriggerAsync)

	statuses := store.patchStatuses()
	if len(statuses) != 2 || statuses[1] != "failed" {
		t.Fatalf("patch statuses = %v", statuses)
	}
	store.mu.Lock()
	final := store.patches[1]
	store.mu.Unlock()
	if msg, _ := final["error_message"].(string); msg == "" {
		t.Error("expected error_message on failed update")
	}
}
