package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager signs and validates session cookie tokens. The token only carries
// the session id; all session state lives in the session store.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration // 0 issues tokens without expiry
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), TTL: ttl}
}

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// GenerateSessionToken returns a signed token for sid and its expiry (zero when TTL is 0).
func (m *JWTManager) GenerateSessionToken(sid string) (string, time.Time, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	var exp time.Time
	if m.TTL > 0 {
		exp = now.Add(m.TTL)
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

func (m *JWTManager) ParseSessionToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.SessionID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
