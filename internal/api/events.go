package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/seantiz/kiln/internal/model"
)

// streamRoute is the chi pattern of the live event stream.
const streamRoute = "/v1/events/"

const (
	defaultHistoryLimit = 100
	maxHistoryLimit     = 1000
)

// handleStreamEvents streams live worker events as server-sent events. Each
// event is named after its kind and carries the JSON-encoded record.
func (s *Server) handleStreamEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Streams outlive the server write timeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug("set write deadline for SSE", "error", err)
	}

	ch, unsub := s.broker.Subscribe()
	defer unsub()
	eventStreams.Inc()
	defer eventStreams.Dec()

	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case rec, ok := <-ch:
			if !ok {
				_ = writeSSEEvent(w, "done", "stream complete")
				if canFlush {
					flusher.Flush()
				}
				return
			}
			if err := writeSSERecord(w, rec); err != nil {
				return
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

// eventHistoryResponse is the JSON response for GET /v1/events/history.
type eventHistoryResponse struct {
	Events []model.EventRecord `json:"events"`
}

func (s *Server) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	evs, err := s.store.ListEvents(r.Context(), limit)
	if err != nil {
		s.logger.Error("list events", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if evs == nil {
		evs = []model.EventRecord{}
	}

	s.writeJSON(w, http.StatusOK, eventHistoryResponse{Events: evs})
}

// writeSSERecord writes rec as an SSE event named after its kind, with the
// record id set to worker and sequence number.
func writeSSERecord(w http.ResponseWriter, rec model.EventRecord) error {
	if _, err := fmt.Fprintf(w, "id: %s-%d\nevent: %s\n", rec.WorkerID, rec.Seq, rec.Kind); err != nil {
		return err
	}
	return writeSSEData(w, rec.Payload)
}

// writeSSEData writes a data field. Multi-line strings are split so that each
// segment gets its own "data:" prefix.
func writeSSEData(w http.ResponseWriter, data string) error {
	for seg := range strings.SplitSeq(data, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", seg); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n")
	return err
}

// writeSSEEvent writes a named SSE event (event: <type>\ndata: <data>\n\n).
func writeSSEEvent(w http.ResponseWriter, eventType, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
