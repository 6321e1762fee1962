// internal/httpserver/ws.go
//
// WebSocket stream for a single game: GET /game/{id}/ws.
//
// Server → client frames:
//   {"type":"state","state":{...}}                       after every change (including ticks)
//   {"type":"result","result":"wrong","clearInput":true} reply to an answer
//   {"type":"hint","revealed":true}                      reply to a hint
//   {"type":"error","error":"bad_json"}
//
// Client → server frames:
//   {"action":"answer","input":"..."} | {"action":"hint"} | {"action":"restart"}
//
// A single writer goroutine owns the connection's write side; the handler
// goroutine only reads.

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/doanchu/internal/game"
	"github.com/robalobadob/doanchu/internal/play"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// wsCommand is a client → server frame.
type wsCommand struct {
	Action string `json:"action"`
	Input  string `json:"input"`
}

// wsFrame is a server → client frame.
type wsFrame struct {
	Type       string         `json:"type"`
	State      *game.Snapshot `json:"state,omitempty"`
	Result     game.Result    `json:"result,omitempty"`
	ClearInput bool           `json:"clearInput,omitempty"`
	Revealed   *bool          `json:"revealed,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// checkOrigin accepts same-host requests, the configured client origin and
// non-browser clients that send no Origin header.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || origin == s.cfg.ClientOrigin {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	room := roomFrom(r)
	logger := hlog.FromRequest(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		logger.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, unsubscribe, err := room.Subscribe(ctx)
	if err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	defer unsubscribe()

	out := make(chan wsFrame, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer conn.Close()
		defer cancel()
		wsWrite(ctx, conn, updates, out)
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	logger.Debug().Str("gameId", room.ID()).Msg("websocket connected")
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if _, ok := err.(*websocket.CloseError); !ok && ctx.Err() == nil {
				logger.Debug().Err(err).Msg("websocket read")
			}
			break
		}
		var frame wsFrame
		var cmd wsCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			frame = wsFrame{Type: "error", Error: "bad_json"}
		} else if frame, err = dispatch(ctx, room, cmd); err != nil {
			break
		}
		select {
		case out <- frame:
		case <-ctx.Done():
		}
	}

	cancel()
	<-writerDone
	logger.Debug().Str("gameId", room.ID()).Msg("websocket disconnected")
}

// dispatch applies one client command to the room and builds the reply frame.
// Snapshots reach the client through the subscription, not the reply.
func dispatch(ctx context.Context, room *play.Room, cmd wsCommand) (wsFrame, error) {
	switch cmd.Action {
	case "answer":
		out, _, err := room.Submit(ctx, cmd.Input)
		if err != nil {
			return wsFrame{}, err
		}
		return wsFrame{Type: "result", Result: out.Result, ClearInput: out.ClearInput}, nil
	case "hint":
		ok, _, err := room.Hint(ctx)
		if err != nil {
			return wsFrame{}, err
		}
		return wsFrame{Type: "hint", Revealed: &ok}, nil
	case "restart":
		snap, err := room.Start(ctx)
		if err != nil {
			return wsFrame{}, err
		}
		return wsFrame{Type: "state", State: &snap}, nil
	default:
		return wsFrame{Type: "error", Error: "unknown_action"}, nil
	}
}

// wsWrite is the only writer on conn. It returns when ctx ends, the room
// closes or a write fails.
func wsWrite(ctx context.Context, conn *websocket.Conn, updates <-chan game.Snapshot, out <-chan wsFrame) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	send := func(f wsFrame) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f) == nil
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"),
					time.Now().Add(writeWait))
				return
			}
			if !send(wsFrame{Type: "state", State: &snap}) {
				return
			}
		case f := <-out:
			if !send(f) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
