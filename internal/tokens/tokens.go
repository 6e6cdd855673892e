// Package tokens is the single token codec for the whole system. Both the API
// middleware and the gateway verify through it, so the two layers can never
// disagree on claim shape or signing secret.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the fixed lifetime of every issued token.
const TTL = 7 * 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type Codec struct {
	Secret []byte

	// now is overridable in tests to pin expiry boundaries.
	now func() time.Time
}

func NewCodec(secret []byte) *Codec {
	return &Codec{Secret: secret, now: time.Now}
}

// Issue signs a token for the given identity, expiring TTL from now.
func (c *Codec) Issue(userID uint, email, role string) (string, time.Time, error) {
	now := c.clock()()
	exp := now.Add(TTL)
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies signature, shape and expiry. All-or-nothing: any failure
// returns ErrInvalidToken.
func (c *Codec) Parse(tokenStr string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.Secret, nil
	}, jwt.WithTimeFunc(c.clock()))
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// WithNow pins the codec's clock. Test hook.
func (c *Codec) WithNow(fn func() time.Time) *Codec {
	c.now = fn
	return c
}

func (c *Codec) clock() func() time.Time {
	if c.now != nil {
		return c.now
	}
	return time.Now
}
