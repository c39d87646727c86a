package token

import (
	"crypto/sha256"
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

type pasetoCodec struct {
	key    paseto.V4SymmetricKey
	issuer string
}

// newPasetoCodec derives the v4.local key from the shared secret so both
// formats are driven by the same configuration value.
func newPasetoCodec(secret, issuer string) (*pasetoCodec, error) {
	sum := sha256.Sum256([]byte(secret))
	k, err := paseto.V4SymmetricKeyFromBytes(sum[:])
	if err != nil {
		return nil, ErrConfig{Msg: "invalid symmetric key: " + err.Error()}
	}
	return &pasetoCodec{key: k, issuer: issuer}, nil
}

func (p *pasetoCodec) encode(c *Claims) (string, error) {
	tok := paseto.NewToken()
	tok.SetIssuer(c.Issuer)
	tok.SetSubject(c.Email)
	tok.SetJti(c.TokenID)
	tok.SetIssuedAt(c.IssuedAt)
	tok.SetNotBefore(c.IssuedAt)
	tok.SetExpiration(c.ExpiresAt)

	tok.SetString("email", c.Email)
	if err := tok.Set("isAdmin", c.Admin); err != nil {
		return "", err
	}

	return tok.V4Encrypt(p.key, nil), nil
}

func (p *pasetoCodec) decode(raw string, now time.Time) (*Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.IssuedBy(p.issuer))
	parser.AddRule(paseto.ValidAt(now))

	tok, err := parser.ParseV4Local(p.key, raw, nil)
	if err != nil {
		return nil, err
	}

	jti, err := tok.GetJti()
	if err != nil {
		return nil, err
	}
	iat, err := tok.GetIssuedAt()
	if err != nil {
		return nil, err
	}
	exp, err := tok.GetExpiration()
	if err != nil {
		return nil, err
	}
	email, err := tok.GetString("email")
	if err != nil {
		return nil, err
	}

	var admin bool
	if err := tok.Get("isAdmin", &admin); err != nil {
		return nil, err
	}

	return &Claims{
		Email:     email,
		Admin:     admin,
		Issuer:    p.issuer,
		TokenID:   jti,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}
