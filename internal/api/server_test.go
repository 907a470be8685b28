package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"platwatch/internal/domain"
	"platwatch/internal/engine"
)

type stubSource struct{}

func (stubSource) Catalog(context.Context) ([]domain.CatalogEntry, error) { return nil, nil }
func (stubSource) OrderBook(context.Context, string) (*domain.OrderBook, error) {
	return &domain.OrderBook{}, nil
}
func (stubSource) Statistics(context.Context, string, domain.Window) ([]domain.PriceSample, error) {
	return nil, nil
}

func newTestServer(t *testing.T, names ...string) (*Server, *engine.RecordStore, *engine.Scheduler) {
	t.Helper()
	entries := make([]domain.CatalogEntry, 0, len(names))
	for _, n := range names {
		entries = append(entries, domain.CatalogEntry{Name: n, URLName: strings.ToLower(n)})
	}

	store := engine.NewRecordStore()
	store.Load(entries, nil)

	source := stubSource{}
	sched := engine.NewScheduler(source, engine.NewPriceCache(source), store, engine.SchedulerOptions{
		FilterDelay: 5 * time.Millisecond,
	})
	return NewServer(store, sched, nil, NewHub()), store, sched
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServer_ListRecords(t *testing.T) {
	srv, _, _ := newTestServer(t, "Adder Prime", "Boar Prime")
	router := srv.Router()

	resp := do(router, http.MethodGet, "/api/records", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}

	var records []domain.ItemRecord
	if err := json.Unmarshal(resp.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Name != "Adder Prime" || records[0].Slot != 0 {
		t.Errorf("first record = %+v", records[0])
	}
}

func TestServer_GetRecord(t *testing.T) {
	srv, _, _ := newTestServer(t, "Adder Prime")
	router := srv.Router()

	resp := do(router, http.MethodGet, "/api/records/0", "")
	if resp.Code != http.StatusOK {
		t.Errorf("status = %d", resp.Code)
	}

	if resp := do(router, http.MethodGet, "/api/records/9", ""); resp.Code != http.StatusNotFound {
		t.Errorf("unknown slot status = %d, want 404", resp.Code)
	}
	if resp := do(router, http.MethodGet, "/api/records/abc", ""); resp.Code != http.StatusBadRequest {
		t.Errorf("bad slot status = %d, want 400", resp.Code)
	}
}

func TestServer_PauseResume(t *testing.T) {
	srv, _, sched := newTestServer(t, "Adder Prime")
	router := srv.Router()

	if resp := do(router, http.MethodPost, "/api/pause", ""); resp.Code != http.StatusOK {
		t.Fatalf("pause status = %d", resp.Code)
	}
	if !sched.Paused() {
		t.Error("pause endpoint should pause the scheduler")
	}

	if resp := do(router, http.MethodPost, "/api/resume", ""); resp.Code != http.StatusOK {
		t.Fatalf("resume status = %d", resp.Code)
	}
	if sched.Paused() {
		t.Error("resume endpoint should clear the pause")
	}
}

func TestServer_FilterRoundTrip(t *testing.T) {
	srv, _, sched := newTestServer(t, "Adder Prime", "Boar Prime")
	router := srv.Router()

	resp := do(router, http.MethodPost, "/api/filter", `{"query":"boar"}`)
	if resp.Code != http.StatusAccepted {
		t.Fatalf("filter status = %d", resp.Code)
	}

	deadline := time.Now().Add(time.Second)
	for !sched.Filtering() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !sched.Filtering() {
		t.Fatal("filter mode should engage after the debounce")
	}
	if got := sched.QueueLengths()[engine.QueueFiltered]; got != 1 {
		t.Errorf("filtered queue = %d, want 1 match", got)
	}

	if resp := do(router, http.MethodDelete, "/api/filter", ""); resp.Code != http.StatusNoContent {
		t.Fatalf("exit filter status = %d", resp.Code)
	}
	if sched.Filtering() {
		t.Error("filter mode should end")
	}
}

func TestServer_FilterValidation(t *testing.T) {
	srv, _, _ := newTestServer(t, "Adder Prime")
	router := srv.Router()

	if resp := do(router, http.MethodPost, "/api/filter", `{}`); resp.Code != http.StatusBadRequest {
		t.Errorf("missing query status = %d, want 400", resp.Code)
	}
	if resp := do(router, http.MethodPost, "/api/filter", `{"query":"   "}`); resp.Code != http.StatusBadRequest {
		t.Errorf("blank query status = %d, want 400", resp.Code)
	}
}

func TestServer_RefreshNow(t *testing.T) {
	srv, _, sched := newTestServer(t, "Adder Prime")
	router := srv.Router()

	if resp := do(router, http.MethodPost, "/api/items/0/refresh", ""); resp.Code != http.StatusAccepted {
		t.Errorf("refresh status = %d", resp.Code)
	}
	if got := sched.QueueLengths()[engine.QueueAll]; got != 1 {
		t.Errorf("all queue = %d, want the prioritized slot", got)
	}

	if resp := do(router, http.MethodPost, "/api/items/9/refresh", ""); resp.Code != http.StatusNotFound {
		t.Errorf("unknown slot status = %d, want 404", resp.Code)
	}
}

func TestServer_Track(t *testing.T) {
	srv, store, _ := newTestServer(t, "Adder Prime")
	router := srv.Router()

	if resp := do(router, http.MethodPut, "/api/items/0/track", `{"enabled":true,"target":25}`); resp.Code != http.StatusNoContent {
		t.Fatalf("track status = %d", resp.Code)
	}
	rec, _ := store.Get(0)
	if !rec.Track.Enabled || !rec.Track.Price.IsPositive() {
		t.Errorf("track = %+v", rec.Track)
	}

	if resp := do(router, http.MethodPut, "/api/items/0/track", `{"enabled":false}`); resp.Code != http.StatusNoContent {
		t.Fatalf("untrack status = %d", resp.Code)
	}
	rec, _ = store.Get(0)
	if rec.Track.Enabled {
		t.Error("untrack should clear the target")
	}
}

func TestServer_Purge(t *testing.T) {
	srv, _, sched := newTestServer(t, "Adder Prime")
	router := srv.Router()
	_ = sched.RefreshNow(0)

	if resp := do(router, http.MethodPost, "/api/queues/all/purge", ""); resp.Code != http.StatusNoContent {
		t.Fatalf("purge status = %d", resp.Code)
	}
	if got := sched.QueueLengths()[engine.QueueAll]; got != 0 {
		t.Errorf("all queue = %d after purge, want 0", got)
	}
	if resp := do(router, http.MethodPost, "/api/queues/backlog/purge", ""); resp.Code != http.StatusBadRequest {
		t.Errorf("unknown queue status = %d, want 400", resp.Code)
	}
}

func TestServer_Stats(t *testing.T) {
	srv, _, _ := newTestServer(t, "Adder Prime")
	resp := do(srv.Router(), http.MethodGet, "/api/stats", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"metrics", "queues", "paused", "filtering", "records", "clients"} {
		if _, ok := body[key]; !ok {
			t.Errorf("stats missing %q", key)
		}
	}
}
