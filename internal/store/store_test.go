package store

import (
	"context"
	"testing"
	"time"

	"github.com/pavelanni/papergen/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func recordTestCall(t *testing.T, s *Store, id, requestID, errText string, at time.Time) {
	t.Helper()
	err := s.RecordCall(context.Background(), model.GenerationCall{
		ID:        id,
		RequestID: requestID,
		Backend:   "mock",
		Model:     "mock",
		Prompt:    "prompt " + id,
		Response:  "1. question " + id,
		Error:     errText,
		LatencyMs: 12,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("RecordCall(%s): %v", id, err)
	}
}

func TestRecordAndListCalls(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	count, err := s.CallCount(ctx)
	if err != nil {
		t.Fatalf("CallCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 calls, got %d", count)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	recordTestCall(t, s, "c1", "req-a", "", base)
	recordTestCall(t, s, "c2", "req-a", "backend down", base.Add(time.Second))
	recordTestCall(t, s, "c3", "req-b", "", base.Add(2*time.Second))

	all, err := s.ListCalls(ctx, CallFilter{})
	if err != nil {
		t.Fatalf("ListCalls: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(all))
	}
	if all[0].ID != "c1" || all[2].ID != "c3" {
		t.Errorf("calls not in insertion order: %s, %s", all[0].ID, all[2].ID)
	}
	if all[0].Prompt != "prompt c1" || all[0].LatencyMs != 12 {
		t.Errorf("unexpected call %+v", all[0])
	}
	if !all[0].CreatedAt.Equal(base) {
		t.Errorf("created_at = %v, want %v", all[0].CreatedAt, base)
	}

	byReq, err := s.ListCalls(ctx, CallFilter{RequestID: "req-a"})
	if err != nil {
		t.Fatalf("ListCalls(req-a): %v", err)
	}
	if len(byReq) != 2 {
		t.Errorf("expected 2 calls for req-a, got %d", len(byReq))
	}

	failed, err := s.ListCalls(ctx, CallFilter{FailedOnly: true})
	if err != nil {
		t.Fatalf("ListCalls(failed): %v", err)
	}
	if len(failed) != 1 || failed[0].Error != "backend down" {
		t.Errorf("unexpected failed calls %+v", failed)
	}

	limited, err := s.ListCalls(ctx, CallFilter{Limit: 2})
	if err != nil {
		t.Fatalf("ListCalls(limit): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 calls with limit, got %d", len(limited))
	}
}

func TestRecordCallDuplicateID(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()
	recordTestCall(t, s, "dup", "", "", now)
	err := s.RecordCall(context.Background(), model.GenerationCall{ID: "dup", Backend: "mock", Model: "mock", CreatedAt: now})
	if err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v, err := s.GetMetadata(ctx, "backend")
	if err != nil || v != "" {
		t.Fatalf("missing key = %q, %v", v, err)
	}

	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if err := s.RecordServerStart(ctx, "gemini", "gemini-1.5-pro", at); err != nil {
		t.Fatalf("RecordServerStart: %v", err)
	}
	if err := s.RecordServerStart(ctx, "openai", "llama3.2", at); err != nil {
		t.Fatalf("RecordServerStart again: %v", err)
	}

	meta, err := s.AllMetadata(ctx)
	if err != nil {
		t.Fatalf("AllMetadata: %v", err)
	}
	if meta["backend"] != "openai" || meta["model"] != "llama3.2" {
		t.Errorf("metadata not upserted: %v", meta)
	}
	if meta["started_at"] != "2026-03-01T09:30:00Z" {
		t.Errorf("started_at = %q", meta["started_at"])
	}
}

func TestExportAudit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.ExportAudit(ctx, CallFilter{})
	if err != nil {
		t.Fatalf("ExportAudit: %v", err)
	}
	if empty.Count != 0 || empty.Calls == nil {
		t.Errorf("empty export should carry a non-nil empty list, got %+v", empty)
	}

	recordTestCall(t, s, "c1", "req-a", "", time.Now())
	if err := s.SetMetadata(ctx, "backend", "mock"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}

	exp, err := s.ExportAudit(ctx, CallFilter{})
	if err != nil {
		t.Fatalf("ExportAudit: %v", err)
	}
	if exp.Count != 1 || len(exp.Calls) != 1 {
		t.Errorf("unexpected export %+v", exp)
	}
	if exp.Server["backend"] != "mock" {
		t.Errorf("export metadata = %v", exp.Server)
	}
}
