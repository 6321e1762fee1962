// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - GET  /daily     → today's date key (UTC)
//   - POST /daily/new → start a game seeded from today's date
//
// Everyone playing on the same UTC day gets the same words, masks and hint
// order for the same sequence of actions. Each call creates a fresh room, so
// the daily game can be replayed.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/doanchu/internal/daily"
)

// dailyInfo is returned by GET /daily.
type dailyInfo struct {
	Date string `json:"date"`
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/", s.handleDailyInfo)
		r.Post("/new", s.handleDailyNew)
	})
}

func (s *Server) handleDailyInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dailyInfo{Date: daily.DateKey(time.Now())})
}

// handleDailyNew creates a room whose random source is derived from today's
// date and DAILY_SALT.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	res, err := s.createGame(r.Context(), w, daily.RNG(now, s.cfg.DailySalt))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("create daily game")
		writeError(w, http.StatusInternalServerError, "create_failed")
		return
	}
	res.Date = daily.DateKey(now)
	writeJSON(w, http.StatusCreated, res)
}
