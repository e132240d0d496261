package api

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seantiz/kiln/internal/events"
	"github.com/seantiz/kiln/internal/input"
	"github.com/seantiz/kiln/internal/model"
)

type sseEvent struct {
	id   string
	name string
	data string
}

func readSSE(t *testing.T, resp *http.Response) []sseEvent {
	t.Helper()
	scanner := bufio.NewScanner(resp.Body)
	var (
		out  []sseEvent
		cur  sseEvent
		data []string
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "id: "):
			cur.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			cur.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		case line == "":
			cur.data = strings.Join(data, "\n")
			out = append(out, cur)
			cur, data = sseEvent{}, nil
		}
	}
	return out
}

func TestStreamEventsReceivesEvents(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/v1/events", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	mgr := events.NewBrokerManager[input.Bytes](srv.broker, 4)
	if err := mgr.Fire(events.LoadInitial{SenderID: 4}); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if err := mgr.Fire(events.UpdateStats{Executions: 9, ExecsPerSec: 3}); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	srv.broker.Close()

	got := readSSE(t, resp)
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3: %+v", len(got), got)
	}
	if got[0].name != model.EventLoadInitial || got[0].id != "4-0" {
		t.Errorf("event[0] = %+v", got[0])
	}
	if got[1].name != model.EventUpdateStats || got[1].id != "4-1" {
		t.Errorf("event[1] = %+v", got[1])
	}
	var stats events.UpdateStats
	if err := json.Unmarshal([]byte(got[1].data), &stats); err != nil {
		t.Fatalf("decode stats payload: %v", err)
	}
	if stats.Executions != 9 || stats.ExecsPerSec != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if got[2].name != "done" {
		t.Errorf("last event = %q, want done", got[2].name)
	}
}

func TestStreamEventsMultiLineData(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", ts.URL+"/v1/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	srv.broker.Publish(model.EventRecord{WorkerID: "0", Kind: model.EventLog, Payload: "line one\nline two"})
	srv.broker.Close()

	got := readSSE(t, resp)
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(got), got)
	}
	if got[0].data != "line one\nline two" {
		t.Errorf("data = %q, want multi-line payload", got[0].data)
	}
}

func TestEventHistory(t *testing.T) {
	srv := newTestServer(t)
	rec := events.NewRecorder[input.Bytes](srv.store, 1)
	for i := 0; i < 3; i++ {
		if err := rec.Fire(events.Log{SenderID: 1, Message: "hello"}); err != nil {
			t.Fatalf("Fire: %v", err)
		}
	}

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/events/history?limit=2")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body eventHistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Events) != 2 {
		t.Fatalf("len = %d, want 2", len(body.Events))
	}
	if body.Events[0].Seq != 1 || body.Events[1].Seq != 2 {
		t.Errorf("seqs = %d,%d, want 1,2", body.Events[0].Seq, body.Events[1].Seq)
	}
	if body.Events[0].Kind != model.EventLog {
		t.Errorf("kind = %q, want %q", body.Events[0].Kind, model.EventLog)
	}
}

func TestEventHistoryEmpty(t *testing.T) {
	srv := newTestServer(t)

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/events/history")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body eventHistoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Events == nil || len(body.Events) != 0 {
		t.Errorf("events = %v, want empty array", body.Events)
	}
}
