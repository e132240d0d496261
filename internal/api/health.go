package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status  string `json:"status"`
	UptimeS int64  `json:"uptime_s"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		UptimeS: int64(time.Since(s.monitor.Snapshot().StartedAt) / time.Second),
	})
}

func (s *Server) handleListMutations(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"mutations": s.mutations.List()})
}
