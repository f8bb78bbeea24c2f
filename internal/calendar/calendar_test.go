package calendar

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/spigell/hh-screener/internal/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStaticListSlots(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	s := NewStatic([]SlotOffset{{Days: 3, Hour: 11}, {Days: 1, Hour: 10}, {Days: 2, Hour: 14}})
	s.now = func() time.Time { return now }

	slots, err := s.ListSlots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := []time.Time{
		time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 13, 11, 0, 0, 0, time.UTC),
	}
	if len(slots) != len(expect) {
		t.Fatalf("expected %d slots, got %v", len(expect), slots)
	}
	for i := range expect {
		if !slots[i].Equal(expect[i]) {
			t.Fatalf("slot %d: expected %s, got %s", i, expect[i], slots[i])
		}
	}
}

func TestStaticWithoutOffsets(t *testing.T) {
	t.Parallel()

	slots, err := NewStatic(nil).ListSlots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %v", slots)
	}
}

func TestLogNotifier(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	n := NewLogNotifier(zap.New(core))
	c := &model.Candidate{ID: "c-1", Email: "a@example.com"}
	slot := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	if err := n.SendInvite(context.Background(), c, slot); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if err := n.SendConfirmation(context.Background(), c, slot); err != nil {
		t.Fatalf("confirmation: %v", err)
	}

	if logs.FilterMessage("calendar invite sent").Len() != 1 || logs.FilterMessage("confirmation sent").Len() != 1 {
		t.Fatalf("unexpected log entries: %v", logs.All())
	}
	if got := logs.All()[0].ContextMap()["candidate_id"]; got != "c-1" {
		t.Fatalf("unexpected candidate_id %v", got)
	}
}

func TestClientListSlotsFollowsPages(t *testing.T) {
	t.Parallel()

	pages := map[string]map[string]any{
		"": {
			"items": []map[string]any{
				{"start": "2026-03-12T14:00:00Z", "available": true},
				{"start": "2026-03-11T09:00:00Z", "available": false},
			},
			"pages": 2, "page": 0, "per_page": 2,
		},
		"1": {
			"items": []map[string]any{
				{"start": "2026-03-11T10:00:00Z"},
			},
			"pages": 2, "page": 1, "per_page": 2,
		},
	}

	var mu sync.Mutex
	var auth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/slots" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		auth = append(auth, r.Header.Get("Authorization"))
		mu.Unlock()

		page := r.URL.Query().Get("page")
		body, ok := pages[page]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if page == "1" {
			w.Header().Set("Content-Encoding", "gzip")
			gz := gzip.NewWriter(w)
			defer gz.Close()
			_ = json.NewEncoder(gz).Encode(body)
			return
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	slots, err := NewClient(nil, srv.URL+"/", "secret").ListSlots(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := []time.Time{
		time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 12, 14, 0, 0, 0, time.UTC),
	}
	if len(slots) != len(expect) {
		t.Fatalf("expected %d slots, got %v", len(expect), slots)
	}
	for i := range expect {
		if !slots[i].Equal(expect[i]) {
			t.Fatalf("slot %d: expected %s, got %s", i, expect[i], slots[i])
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(auth) != 2 || auth[0] != "Bearer secret" {
		t.Fatalf("unexpected authorization headers %v", auth)
	}
}

func TestClientListSlotsBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(nil, srv.URL, "").ListSlots(context.Background()); err == nil {
		t.Fatal("expected error on bad status")
	}
}

func TestClientNotifications(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	received := map[string]map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields := map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		mu.Lock()
		received[r.URL.Path] = fields
		mu.Unlock()

		if r.URL.Path == "/confirmations" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(nil, srv.URL, "")
	c := &model.Candidate{ID: "c-1", Name: "Jane", Email: "jane@example.com"}
	slot := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	if err := client.SendInvite(context.Background(), c, slot); err != nil {
		t.Fatalf("invite: %v", err)
	}
	if err := client.SendConfirmation(context.Background(), c, slot); err != nil {
		t.Fatalf("confirmation: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, path := range []string{"/invites", "/confirmations"} {
		fields, ok := received[path]
		if !ok {
			t.Fatalf("expected request to %s", path)
		}
		if fields["candidate_id"] != "c-1" || fields["start"] != "2026-03-11T10:00:00Z" {
			t.Fatalf("unexpected form for %s: %v", path, fields)
		}
	}
}
