package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mindduel/backend/internal/hub"
)

// PoolSummary is one row of the lobby listing.
type PoolSummary struct {
	PoolID     string   `json:"poolId"`
	Stake      float64  `json:"stake"`
	State      string   `json:"state"`
	Players    int      `json:"players"`
	PlayerList []string `json:"playerList"`
}

// ListPools returns the lobby view: every tier with its member count, in
// stake order.
func ListPools(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views := h.Views()
		summaries := make([]PoolSummary, 0, len(views))
		for _, v := range views {
			summaries = append(summaries, PoolSummary{
				PoolID:     v.PoolID,
				Stake:      v.Stake,
				State:      v.State,
				Players:    len(v.Members),
				PlayerList: v.Members,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(summaries)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
