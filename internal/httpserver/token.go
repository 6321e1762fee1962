// internal/httpserver/token.go
//
// Session tokens for game endpoints.
//
// A token is an HS256 JWT carrying the game ID ("gid"). It is returned in the
// body of POST /game/new and also set as an HttpOnly cookie. Requests may
// present it as:
//   - Authorization: Bearer <token>
//   - the session cookie
//   - ?token=<token> (browsers cannot set headers on WebSocket upgrades)
//
// requireSession verifies the token, checks that "gid" matches the {id} path
// parameter, loads the room from the store and puts it in the request context.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/doanchu/internal/play"
	"github.com/robalobadob/doanchu/internal/store"
)

const tokenLifetime = 24 * time.Hour

type ctxRoomKey struct{}

var errBadToken = errors.New("invalid session token")

// signToken issues a token bound to gameID.
func (s *Server) signToken(gameID string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(tokenLifetime)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"gid": gameID,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := token.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// parseToken validates the signature and expiry and returns the game ID.
func (s *Server) parseToken(tokenStr string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errBadToken
	}
	gid, _ := claims["gid"].(string)
	if gid == "" {
		return "", errBadToken
	}
	return gid, nil
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.cfg.CookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// sessionToken extracts the token from header, cookie or query, in that order.
func (s *Server) sessionToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}

// requireSession guards /game/{id} routes.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := s.sessionToken(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		gid, err := s.parseToken(tokenStr)
		if err != nil || gid != chi.URLParam(r, "id") {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		room, err := s.store.Get(gid)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal")
			return
		}
		ctx := context.WithValue(r.Context(), ctxRoomKey{}, room)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// roomFrom returns the room loaded by requireSession.
func roomFrom(r *http.Request) *play.Room {
	room, _ := r.Context().Value(ctxRoomKey{}).(*play.Room)
	return room
}
