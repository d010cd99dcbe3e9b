package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestConsole(t *testing.T) {
	var buf strings.Builder
	c := NewConsole(&buf)

	err := c.Notify(context.Background(), Event{Group: "com.example", Artifact: "demo", Version: "1.2.3"})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	want := "new version com.example:demo 1.2.3\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestWebhook(t *testing.T) {
	var got Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	hook := NewWebhook(server.URL)
	event := Event{
		Group:    "org.apache.commons",
		Artifact: "commons-lang3",
		Version:  "3.14.0",
		Latest:   "3.14.0",
		PURL:     "pkg:maven/org.apache.commons/commons-lang3@3.14.0",
		Links:    map[string]string{"download": "https://repo1.maven.org/maven2/org/apache/commons/commons-lang3/3.14.0/commons-lang3-3.14.0.jar"},
	}
	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if got.Group != event.Group || got.Artifact != event.Artifact || got.Version != event.Version {
		t.Errorf("payload = %+v", got)
	}
	if got.PURL != event.PURL {
		t.Errorf("purl = %q, want %q", got.PURL, event.PURL)
	}
	if got.Links["download"] != event.Links["download"] {
		t.Errorf("links = %v", got.Links)
	}
}

func TestWebhook_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	hook := NewWebhook(server.URL)
	if err := hook.Notify(context.Background(), Event{Group: "g", Artifact: "a", Version: "1.0"}); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

type stubNotifier struct {
	events []Event
	err    error
}

func (s *stubNotifier) Notify(_ context.Context, event Event) error {
	s.events = append(s.events, event)
	return s.err
}

func TestHub_FansOut(t *testing.T) {
	a := &stubNotifier{}
	b := &stubNotifier{}
	hub := NewHub(a, b)

	event := Event{Group: "g", Artifact: "a", Version: "1.0"}
	if err := hub.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("sink deliveries = %d, %d; want 1, 1", len(a.events), len(b.events))
	}
}

func TestHub_FailingSinkDoesNotBlockOthers(t *testing.T) {
	failing := &stubNotifier{err: errors.New("sink down")}
	healthy := &stubNotifier{}
	hub := NewHub(failing, healthy)

	err := hub.Notify(context.Background(), Event{Group: "g", Artifact: "a", Version: "1.0"})
	if err == nil {
		t.Fatal("expected joined error from failing sink")
	}
	if len(healthy.events) != 1 {
		t.Errorf("healthy sink deliveries = %d, want 1", len(healthy.events))
	}
}
