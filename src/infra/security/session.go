package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jokesite/src/core/domain"
	"jokesite/src/core/ports"
)

var _ ports.SessionCodec = (*JWTSessionCodec)(nil)

const sessionIssuer = "jokesite"

type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// JWTSessionCodec signs session payloads as HS256 JWTs.
// The token is the whole cookie value; nothing is stored server-side.
type JWTSessionCodec struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewJWTSessionCodec builds a codec. Tokens expire maxAge after issue.
func NewJWTSessionCodec(secret string, maxAge time.Duration) (*JWTSessionCodec, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("session max age must be positive, got %s", maxAge)
	}
	return &JWTSessionCodec{secret: []byte(secret), maxAge: maxAge, now: time.Now}, nil
}

func (c *JWTSessionCodec) Encode(s domain.Session) (string, error) {
	if s.UserID == uuid.Nil {
		return "", errors.New("session has no user")
	}
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   s.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
		UserID: s.UserID.String(),
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (c *JWTSessionCodec) Decode(value string) (domain.Session, bool) {
	if value == "" {
		return domain.Session{}, false
	}
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims,
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return domain.Session{}, false
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil || id == uuid.Nil {
		return domain.Session{}, false
	}
	return domain.Session{UserID: id}, true
}
