package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// requireAuth validates a bearer token on the callback endpoint when a
// webhook secret is configured. Without a secret the endpoint is open,
// matching bridges that cannot attach headers.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	if s.secret == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, &UnauthorizedError{Message: "missing bearer token"})
			return
		}
		if err := s.validateToken(token); err != nil {
			s.writeError(w, &UnauthorizedError{Message: "invalid bearer token"})
			return
		}
		next(w, r)
	}
}

func (s *Server) validateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("token is not valid")
	}
	return nil
}

// IssueToken mints a bearer token for a bridge to present on callbacks.
func IssueToken(secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"iss": "recipe-agent",
		"iat": jwt.NewNumericDate(time.Now()),
		"exp": jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
