package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recouphq/voicebridge/internal/webhook"
)

func samplePayload() webhook.Payload {
	return webhook.Payload{
		Event: webhook.EventCallCompleted,
		Data: webhook.CallCompletedData{
			CallSID:          "CA123",
			InvoiceID:        "inv-1",
			InvoiceReference: "INV-100",
			ClientName:       "Jane Doe",
			DurationSeconds:  95,
			Outcome:          "payment_committed",
			Transcript:       "[2026-08-30T10:00:00Z] debtor: I can pay today",
			StartTime:        "2026-08-30T10:00:00Z",
			EndTime:          "2026-08-30T10:01:35Z",
		},
	}
}

func TestDeliver_EmptyURL(t *testing.T) {
	d := NewHTTPDispatcher("", "")
	if err := d.Deliver(context.Background(), samplePayload()); err != nil {
		t.Fatalf("expected nil error for unconfigured webhook, got %v", err)
	}
}

func TestDeliver_Success(t *testing.T) {
	var gotSecret string
	var gotBody webhook.Payload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		gotSecret = r.Header.Get("X-Webhook-Secret")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := NewHTTPDispatcher(server.URL, "shared-secret")
	if err := d.Deliver(context.Background(), samplePayload()); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotSecret != "shared-secret" {
		t.Fatalf("unexpected secret header: %s", gotSecret)
	}
	if gotBody.Event != "call.completed" || gotBody.Data.CallSID != "CA123" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
}

func TestDeliver_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	d := NewHTTPDispatcher(server.URL, "shared-secret")
	if err := d.Deliver(context.Background(), samplePayload()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestDeliver_Unreachable(t *testing.T) {
	d := NewHTTPDispatcher("http://127.0.0.1:1/never", "shared-secret")
	if err := d.Deliver(context.Background(), samplePayload()); err == nil {
		t.Fatal("expected error for unreachable endpoint")
	}
}
