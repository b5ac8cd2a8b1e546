package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tourbot/internal/domain"
)

type Handlers struct{ History domain.HistoryStore }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/history/{userID}", h.listHistory)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

type historySearch struct {
	Command string         `json:"command"`
	At      time.Time      `json:"at"`
	Hotels  []historyHotel `json:"hotels"`
}

type historyHotel struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (h *Handlers) listHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "userID must be a number")
		return
	}
	entries, err := h.History.ListSearches(r.Context(), userID)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Storage Error", "history unavailable")
		return
	}

	out := make([]historySearch, 0, len(entries))
	for _, e := range entries {
		hs := historySearch{Command: e.Command, At: e.At, Hotels: []historyHotel{}}
		for _, hotel := range e.Hotels {
			hs.Hotels = append(hs.Hotels, historyHotel{Name: hotel.Name, Address: hotel.Address})
		}
		out = append(out, hs)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Error().Err(err).Msg("failed to write history body")
	}
}
