package queue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	gw := NewGateway(srv.URL, "service-key")
	if gw == nil {
		t.Fatalf("expected configured gateway")
	}
	return gw, srv
}

func TestNewGatewayUnconfigured(t *testing.T) {
	if NewGateway("", "key") != nil {
		t.Fatalf("expected nil gateway without base url")
	}
	if NewGateway("http://store", "") != nil {
		t.Fatalf("expected nil gateway without service key")
	}
}

func TestUpdateStatusSendsPatch(t *testing.T) {
	var gotMethod, gotQuery, gotAuth, gotAPIKey string
	var gotFields map[string]any

	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		json.NewDecoder(r.Body).Decode(&gotFields)
		w.WriteHeader(http.StatusNoContent)
	})

	err := gw.UpdateStatus(context.Background(), "rec-1", map[string]any{
		"status":   "analysis_in_progress",
		"progress": 10,
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Fatalf("expected PATCH, got %s", gotMethod)
	}
	if gotQuery != "id=eq.rec-1" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
	if gotAuth != "Bearer service-key" || gotAPIKey != "service-key" {
		t.Fatalf("missing auth headers: %q / %q", gotAuth, gotAPIKey)
	}
	if gotFields["status"] != "analysis_in_progress" {
		t.Fatalf("unexpected fields: %v", gotFields)
	}
}

func TestUpdateStatusFailureNotRetried(t *testing.T) {
	attempts := 0
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})

	if err := gw.UpdateStatus(context.Background(), "rec-1", map[string]any{"status": "failed"}); err == nil {
		t.Fatalf("expected error for 500 response")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt, got %d", attempts)
	}
}

func TestFetchRecord(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"rec-1","status":"ocr_complete","extracted_text":"document body","file_name":"plan.pdf"}]`))
	})

	rec, err := gw.FetchRecord(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("fetch record: %v", err)
	}
	if rec.ID != "rec-1" || rec.Status != "ocr_complete" || rec.Content != "document body" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestFetchRecordNotFound(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	if _, err := gw.FetchRecord(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchStatusRejectsUnknown(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"status":"bogus"}]`))
	})

	if _, err := gw.FetchStatus(context.Background(), "rec-1"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestCheckStatus(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"status":"ocr_complete"}]`))
	})

	ok, err := gw.CheckStatus(context.Background(), "rec-1", StatusOCRComplete)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if !ok {
		t.Fatalf("expected precondition to hold")
	}

	ok, err = gw.CheckStatus(context.Background(), "rec-1", StatusAnalysisInProgress)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if ok {
		t.Fatalf("expected precondition mismatch")
	}
}
