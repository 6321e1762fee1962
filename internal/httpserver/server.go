// internal/httpserver/server.go
//
// HTTP server wiring for the Đoán Chữ backend.
// Responsibilities:
//   - Router + middleware (request IDs, access logs, CORS, timeouts, panic recovery).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game creation: POST /game/new (issues a session token bound to the game).
//   - Game endpoints (session token required): state, answer, hint, restart, ws.
//   - Daily Challenge endpoints: mounted under /daily.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Game state lives in play.Room loops held by the store; handlers only
//     forward commands and encode snapshots.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/doanchu/internal/config"
	"github.com/robalobadob/doanchu/internal/game"
	"github.com/robalobadob/doanchu/internal/play"
	"github.com/robalobadob/doanchu/internal/store"
	"github.com/robalobadob/doanchu/internal/words"
)

// Server bundles router, room registry and word bank.
type Server struct {
	r        *chi.Mux
	cfg      *config.Config
	store    *store.Memory
	bank     *words.Bank
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *config.Config, bank *words.Bank, st *store.Memory) *Server {
	s := &Server{r: chi.NewRouter(), cfg: cfg, store: st, bank: bank}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))
	s.r.Use(hlog.RequestIDHandler("req_id", ""))
	s.r.Use(hlog.AccessHandler(accessLog))
	s.r.Use(chimw.Recoverer)
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// JSON API; the WebSocket route below must stay outside the timeout.
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"doanchu-go","endpoints":["/health","POST /game/new","/game/{id}","/daily"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"tiers": s.bank.Stats(), "live": s.store.Len()})
		})

		r.Post("/game/new", s.handleNewGame)
		s.mountDaily(r)
	})

	s.r.Route("/game/{id}", func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/ws", s.handleWS)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(10 * time.Second))
			r.Use(jsonContentType)
			r.Get("/", s.handleState)
			r.Post("/answer", s.handleAnswer)
			r.Post("/hint", s.handleHint)
			r.Post("/restart", s.handleRestart)
		})
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	lvl := zerolog.DebugLevel
	if status >= http.StatusInternalServerError {
		lvl = zerolog.ErrorLevel
	}
	hlog.FromRequest(r).WithLevel(lvl).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

// ------------------------------ GAME ---------------------------------------

// newGameReq is the optional body of POST /game/new.
type newGameReq struct {
	Seed *uint64 `json:"seed"` // fixed seed for reproducible games (testing)
}

// gameRes is returned by game creation endpoints.
type gameRes struct {
	GameID string        `json:"gameId"`
	Token  string        `json:"token"`
	Date   string        `json:"date,omitempty"` // daily games only
	State  game.Snapshot `json:"state"`
}

// stateRes wraps a snapshot.
type stateRes struct {
	State game.Snapshot `json:"state"`
}

// answerReq/Res payloads for POST /game/{id}/answer.
type answerReq struct {
	Input string `json:"input"`
}
type answerRes struct {
	Result     game.Result   `json:"result"`
	ClearInput bool          `json:"clearInput"`
	State      game.Snapshot `json:"state"`
}

// hintRes is returned by POST /game/{id}/hint.
type hintRes struct {
	Revealed bool          `json:"revealed"`
	State    game.Snapshot `json:"state"`
}

// handleNewGame creates and starts a room, then hands out its session token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	var rng *rand.Rand
	if req.Seed != nil {
		rng = rand.New(rand.NewPCG(*req.Seed, *req.Seed))
	}
	res, err := s.createGame(r.Context(), w, rng)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("create game")
		writeError(w, http.StatusInternalServerError, "create_failed")
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// createGame registers a new room, starts it and sets the session cookie.
func (s *Server) createGame(ctx context.Context, w http.ResponseWriter, rng *rand.Rand) (*gameRes, error) {
	room := play.New(s.bank, play.Options{
		Rules:        s.cfg.Rules,
		TickInterval: s.cfg.TickInterval,
		AdvanceDelay: s.cfg.AdvanceDelay,
		RNG:          rng,
	})
	s.store.Put(room)

	snap, err := room.Start(ctx)
	if err != nil {
		s.store.Delete(room.ID())
		return nil, err
	}
	tok, exp, err := s.signToken(room.ID())
	if err != nil {
		s.store.Delete(room.ID())
		return nil, err
	}
	s.setSessionCookie(w, tok, exp)
	return &gameRes{GameID: room.ID(), Token: tok, State: snap}, nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := roomFrom(r).Snapshot(r.Context())
	if err != nil {
		writeRoomError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateRes{State: snap})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	out, snap, err := roomFrom(r).Submit(r.Context(), req.Input)
	if err != nil {
		writeRoomError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answerRes{Result: out.Result, ClearInput: out.ClearInput, State: snap})
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	ok, snap, err := roomFrom(r).Hint(r.Context())
	if err != nil {
		writeRoomError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hintRes{Revealed: ok, State: snap})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	snap, err := roomFrom(r).Start(r.Context())
	if err != nil {
		writeRoomError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stateRes{State: snap})
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeRoomError maps room/loop errors to HTTP statuses.
func writeRoomError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, play.ErrClosed):
		writeError(w, http.StatusGone, "closed")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "timeout")
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("room command")
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
