package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   uint64
	Username string
	Roles    []string
}

// Sessions issues and verifies cookie-carried session tokens.
type Sessions struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
}

func NewSessions(secret, cookieName string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), cookieName: cookieName, ttl: ttl}
}

func (s *Sessions) CookieName() string { return s.cookieName }

func (s *Sessions) Sign(p Principal) (string, error) {
	claims := jwt.MapClaims{
		"sub":   p.UserID,
		"name":  p.Username,
		"roles": p.Roles,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *Sessions) Verify(tokenStr string) (Principal, error) {
	t, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !t.Valid {
		return Principal{}, errors.New("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"]
	if !ok {
		return Principal{}, errors.New("missing sub")
	}
	// jwt MapClaims numbers are float64
	idf, ok := sub.(float64)
	if !ok {
		return Principal{}, errors.New("invalid sub type")
	}

	p := Principal{UserID: uint64(idf)}
	if name, ok := claims["name"].(string); ok {
		p.Username = name
	}
	if roles, ok := claims["roles"].([]any); ok {
		for _, r := range roles {
			if rs, ok := r.(string); ok {
				p.Roles = append(p.Roles, rs)
			}
		}
	}
	return p, nil
}

// Issue establishes the session: a signed token in an HttpOnly cookie.
// SameSite=None/Secure because the front-end lives on a different origin.
func (s *Sessions) Issue(w http.ResponseWriter, p Principal) error {
	token, err := s.Sign(p)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.ttl),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	return nil
}

func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
