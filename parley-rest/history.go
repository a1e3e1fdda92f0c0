package parleyrest

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/parley-chat/parley-go-chat/parley-ws/messagedao"
	"github.com/rs/zerolog"
)

// HistoryHandler serves a room's message history sorted chronologically. The
// store returns rows in key order; the timestamp attribute is the
// authoritative order, so we sort here before responding.
func HistoryHandler(messages *messagedao.DAO) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		roomID := chi.URLParam(req, "roomID")
		if roomID == "" {
			http.Error(w, "missing room id", http.StatusBadRequest)
			return
		}

		history, err := messages.ListHistory(req.Context(), roomID)
		if err != nil {
			zerolog.Ctx(req.Context()).Error().Err(err).Str("room_id", roomID).Msg("failed to list history")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		sort.Slice(history, func(i, j int) bool {
			return history[i].Timestamp < history[j].Timestamp
		})
		if history == nil {
			history = []messagedao.Message{}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(history); err != nil {
			zerolog.Ctx(req.Context()).Error().Err(err).Msg("failed to encode history")
		}
	}
}
