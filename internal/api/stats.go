package api

import (
	"net/http"

	"github.com/seantiz/kiln/internal/events"
)

// statsResponse is the JSON response for GET /v1/stats.
type statsResponse struct {
	Campaign events.Snapshot `json:"campaign"`
	Catalog  catalogStats    `json:"catalog"`
}

type catalogStats struct {
	Total      int            `json:"total"`
	ByWorker   map[string]int `json:"by_worker"`
	AvgFitness float64        `json:"avg_fitness"`
	MaxFitness uint32         `json:"max_fitness"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetCorpusStats(r.Context())
	if err != nil {
		s.logger.Error("get corpus stats", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}

	s.writeJSON(w, http.StatusOK, statsResponse{
		Campaign: s.monitor.Snapshot(),
		Catalog: catalogStats{
			Total:      stats.Total,
			ByWorker:   stats.CountByWorker,
			AvgFitness: stats.AvgFitness,
			MaxFitness: stats.MaxFitness,
		},
	})
}
