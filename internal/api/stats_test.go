package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seantiz/kiln/internal/events"
	"github.com/seantiz/kiln/internal/input"
)

func TestGetStatsEmpty(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET /v1/stats: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Catalog.Total != 0 {
		t.Errorf("catalog total = %d, want 0", body.Catalog.Total)
	}
	if body.Campaign.Executions != 0 {
		t.Errorf("executions = %d, want 0", body.Campaign.Executions)
	}
	if len(body.Campaign.Workers) != 0 {
		t.Errorf("workers = %v, want none", body.Campaign.Workers)
	}
}

func TestGetStatsPopulated(t *testing.T) {
	srv := newTestServer(t)
	createTestcase(t, srv, "0", 0, 2, "/a")
	createTestcase(t, srv, "0", 1, 6, "/b")
	createTestcase(t, srv, "1", 0, 4, "/c")

	w0 := events.NewMonitorManager[input.Bytes](srv.monitor, 0)
	w1 := events.NewMonitorManager[input.Bytes](srv.monitor, 1)
	if err := w0.Fire(events.UpdateStats{Executions: 100, ExecsPerSec: 10}); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if err := w1.Fire(events.UpdateStats{Executions: 50, ExecsPerSec: 5}); err != nil {
		t.Fatalf("Fire: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/stats")
	if err != nil {
		t.Fatalf("GET /v1/stats: %v", err)
	}
	defer resp.Body.Close()

	var body statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if body.Catalog.Total != 3 {
		t.Errorf("catalog total = %d, want 3", body.Catalog.Total)
	}
	if body.Catalog.ByWorker["0"] != 2 || body.Catalog.ByWorker["1"] != 1 {
		t.Errorf("by_worker = %v", body.Catalog.ByWorker)
	}
	if body.Catalog.AvgFitness != 4 {
		t.Errorf("avg_fitness = %v, want 4", body.Catalog.AvgFitness)
	}
	if body.Catalog.MaxFitness != 6 {
		t.Errorf("max_fitness = %d, want 6", body.Catalog.MaxFitness)
	}
	if body.Campaign.Executions != 150 {
		t.Errorf("executions = %d, want 150", body.Campaign.Executions)
	}
	if body.Campaign.ExecsPerSec != 15 {
		t.Errorf("execs_per_sec = %d, want 15", body.Campaign.ExecsPerSec)
	}
	if len(body.Campaign.Workers) != 2 {
		t.Errorf("workers = %d, want 2", len(body.Campaign.Workers))
	}
}
