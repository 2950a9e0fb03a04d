package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// programInfo describes the program the server prescribes.
type programInfo struct {
	TotalWeeks  int   `json:"total_weeks"`
	Blocks      int   `json:"blocks"`
	DeloadWeeks []int `json:"deload_weeks"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	wo, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}
	stats, err := s.svc.Stats(r.Context(), wo.ID)
	if err != nil {
		s.writeError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleProgram(w http.ResponseWriter, r *http.Request) {
	table := s.svc.Table()
	info := programInfo{TotalWeeks: table.TotalWeeks(), DeloadWeeks: []int{}}
	for _, wp := range table.All() {
		if wp.Block > info.Blocks {
			info.Blocks = wp.Block
		}
		if wp.IsDeload {
			info.DeloadWeeks = append(info.DeloadWeeks, wp.Week)
		}
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleWeeks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Table().All())
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid week"})
		return
	}
	wp, err := s.svc.WeekParameters(week)
	if err != nil {
		s.writeError(w, "week parameters", err)
		return
	}
	writeJSON(w, http.StatusOK, wp)
}
