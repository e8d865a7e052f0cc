package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"archive-backend/internal/shared/metrics"
	"archive-backend/internal/shared/telemetry"
)

const recordTable = "processing_queue"

// ErrNotFound is returned when no record matches the given id.
var ErrNotFound = errors.New("queue record not found")

// Gateway reads and writes queue records in the external REST record store.
// Updates are partial PATCHes matched by id; failures are logged and never
// retried here.
type Gateway struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewGateway constructs a Gateway. Returns nil when the store is not
// configured so callers can detect the missing dependency.
func NewGateway(baseURL, serviceKey string) *Gateway {
	if strings.TrimSpace(baseURL) == "" || strings.TrimSpace(serviceKey) == "" {
		return nil
	}
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// UpdateStatus applies a partial update to the record with the given id.
// 200/204 is success; anything else is a logged, non-retried failure.
func (g *Gateway) UpdateStatus(ctx context.Context, id string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal update fields: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, g.recordURL(id, ""), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	g.setHeaders(req)
	req.Header.Set("Prefer", "return=minimal")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		metrics.IncQueueUpdateFailed()
		telemetry.Error("queue.update_failed", map[string]any{"queue_id": id, "error": err.Error()})
		return fmt.Errorf("update record %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		metrics.IncQueueUpdateFailed()
		telemetry.Error("queue.update_failed", map[string]any{
			"queue_id": id,
			"status":   resp.StatusCode,
			"body":     string(body),
		})
		return fmt.Errorf("update record %s: unexpected status %d", id, resp.StatusCode)
	}
	return nil
}

// FetchRecord returns the record with the given id.
func (g *Gateway) FetchRecord(ctx context.Context, id string) (Record, error) {
	var records []Record
	if err := g.get(ctx, g.recordURL(id, "*"), &records); err != nil {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNotFound
	}
	return records[0], nil
}

// FetchStatus returns the live status of the record with the given id.
// Unknown status strings are rejected.
func (g *Gateway) FetchStatus(ctx context.Context, id string) (Status, error) {
	var records []struct {
		Status string `json:"status"`
	}
	if err := g.get(ctx, g.recordURL(id, "status"), &records); err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", ErrNotFound
	}
	status, err := ParseStatus(records[0].Status)
	if err != nil {
		telemetry.Error("queue.unknown_status", map[string]any{"queue_id": id, "status": records[0].Status})
		return "", err
	}
	return status, nil
}

// CheckStatus is the idempotency precondition read: it reports whether the
// record's live status equals expected. A mismatch means the trigger was
// already handled and must be skipped, never double-applied.
func (g *Gateway) CheckStatus(ctx context.Context, id string, expected Status) (bool, error) {
	status, err := g.FetchStatus(ctx, id)
	if err != nil {
		return false, err
	}
	return status == expected, nil
}

func (g *Gateway) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	g.setHeaders(req)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch record: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch record: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode record response: %w", err)
	}
	return nil
}

func (g *Gateway) recordURL(id, selectCols string) string {
	u := g.baseURL + "/rest/v1/" + recordTable + "?id=eq." + url.QueryEscape(id)
	if selectCols != "" {
		u += "&select=" + url.QueryEscape(selectCols)
	}
	return u
}

func (g *Gateway) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+g.serviceKey)
	req.Header.Set("apikey", g.serviceKey)
	req.Header.Set("Content-Type", "application/json")
}
