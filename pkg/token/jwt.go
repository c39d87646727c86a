package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type jwtClaims struct {
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

type jwtCodec struct {
	key    []byte
	issuer string
}

func newJWTCodec(secret, issuer string) *jwtCodec {
	return &jwtCodec{key: []byte(secret), issuer: issuer}
}

func (j *jwtCodec) encode(c *Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Email:   c.Email,
		IsAdmin: c.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.Issuer,
			Subject:   c.Email,
			ID:        c.TokenID,
			IssuedAt:  jwt.NewNumericDate(c.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	})
	return tok.SignedString(j.key)
}

func (j *jwtCodec) decode(raw string, now time.Time) (*Claims, error) {
	var jc jwtClaims
	_, err := jwt.ParseWithClaims(raw, &jc,
		func(*jwt.Token) (any, error) { return j.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, err
	}

	out := &Claims{
		Email:   jc.Email,
		Admin:   jc.IsAdmin,
		Issuer:  jc.Issuer,
		TokenID: jc.ID,
	}
	if jc.IssuedAt != nil {
		out.IssuedAt = jc.IssuedAt.Time
	}
	if jc.ExpiresAt != nil {
		out.ExpiresAt = jc.ExpiresAt.Time
	}
	return out, nil
}
