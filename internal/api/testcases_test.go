package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/seantiz/kiln/internal/model"
)

func createTestcase(t *testing.T, srv *Server, worker string, idx int, fitness uint32, filename string) *model.TestcaseRecord {
	t.Helper()
	rec := &model.TestcaseRecord{
		ID:        model.NewID(),
		WorkerID:  worker,
		Index:     idx,
		Filename:  filename,
		Fitness:   fitness,
		CreatedAt: time.Now().UTC().Add(time.Duration(idx) * time.Second),
	}
	if err := srv.store.CreateTestcase(context.Background(), rec); err != nil {
		t.Fatalf("CreateTestcase: %v", err)
	}
	return rec
}

func TestGetTestcaseExisting(t *testing.T) {
	srv := newTestServer(t)
	rec := createTestcase(t, srv, "0", 0, 3, "/nowhere")

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/testcases/" + rec.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got model.TestcaseRecord
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("id = %q, want %q", got.ID, rec.ID)
	}
	if got.Fitness != 3 {
		t.Errorf("fitness = %d, want 3", got.Fitness)
	}
}

func TestGetTestcaseNotFound(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/testcases/nonexistent")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetTestcaseInput(t *testing.T) {
	srv := newTestServer(t)
	path := filepath.Join(t.TempDir(), "input")
	if err := os.WriteFile(path, []byte{0xde, 0xad, 0xbe, 0xef}, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	rec := createTestcase(t, srv, "0", 0, 1, path)
	gone := createTestcase(t, srv, "0", 1, 1, filepath.Join(t.TempDir(), "missing"))

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	served := testutil.ToFloat64(inputBytesServed)
	resp, err := http.Get(ts.URL + "/v1/testcases/" + rec.ID + "/input")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/octet-stream" {
		t.Errorf("Content-Type = %q, want application/octet-stream", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "\xde\xad\xbe\xef" {
		t.Errorf("body = %x, want deadbeef", body)
	}
	if got := testutil.ToFloat64(inputBytesServed) - served; got != 4 {
		t.Errorf("input bytes served = %v, want 4", got)
	}

	resp2, err := http.Get(ts.URL + "/v1/testcases/" + gone.ID + "/input")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusGone {
		t.Errorf("status = %d, want 410", resp2.StatusCode)
	}
}

func TestListTestcasesEmpty(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/testcases")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body listTestcasesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Testcases == nil || len(body.Testcases) != 0 {
		t.Errorf("testcases = %v, want empty array", body.Testcases)
	}
	if body.Total != 0 {
		t.Errorf("total = %d, want 0", body.Total)
	}
	if body.Limit != defaultListLimit {
		t.Errorf("limit = %d, want %d", body.Limit, defaultListLimit)
	}
}

func TestListTestcasesPagination(t *testing.T) {
	srv := newTestServer(t)
	for i := 0; i < 5; i++ {
		createTestcase(t, srv, "0", i, 1, "/nowhere")
	}

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/testcases?limit=2&offset=1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body listTestcasesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Testcases) != 2 {
		t.Errorf("len = %d, want 2", len(body.Testcases))
	}
	if body.Total != 5 {
		t.Errorf("total = %d, want 5", body.Total)
	}
	if body.Offset != 1 {
		t.Errorf("offset = %d, want 1", body.Offset)
	}
}

func TestListTestcasesInvalidLimit(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/testcases?limit=5000&offset=-3")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body listTestcasesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Limit != defaultListLimit {
		t.Errorf("limit = %d, want %d", body.Limit, defaultListLimit)
	}
	if body.Offset != 0 {
		t.Errorf("offset = %d, want 0", body.Offset)
	}
}
