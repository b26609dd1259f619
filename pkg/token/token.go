package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed means the token is not three dot-separated segments or
	// otherwise fails to parse.
	ErrMalformed = errors.New("malformed token")
	// ErrInvalidSignature means the signature does not match the payload.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpired means the signature is valid but exp is in the past.
	ErrExpired = errors.New("token expired")
)

// DefaultLifetime is the bearer token lifetime used when the caller passes 0.
const DefaultLifetime = 7 * 24 * time.Hour

// SecretFunc returns the current signing secret. It is called on every
// encode/decode so a key rotated in settings takes effect without a restart.
type SecretFunc func() string

// Codec signs claim maps into HS256 bearer tokens and verifies them back.
// Encode and Decode are pure apart from the secret lookup and safe for
// concurrent use.
type Codec struct {
	secret SecretFunc
}

func NewCodec(secret SecretFunc) *Codec {
	return &Codec{secret: secret}
}

// Encode stamps iat/exp onto a copy of claims and returns the signed token:
// base64url(header).base64url(payload).base64url(signature), no padding.
func (c *Codec) Encode(claims map[string]interface{}, lifetime time.Duration) (string, error) {
	if lifetime == 0 {
		lifetime = DefaultLifetime
	}

	now := time.Now()
	payload := jwt.MapClaims{}
	for k, v := range claims {
		payload[k] = v
	}
	payload["iat"] = now.Unix()
	payload["exp"] = now.Add(lifetime).Unix()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return tok.SignedString([]byte(c.secret()))
}

// Decode verifies the signature and expiry and returns the claim map.
// Only HS256 is ever accepted; the algorithm the header declares is not
// trusted, so algorithm confusion is not exploitable. A missing exp claim
// is valid.
func (c *Codec) Decode(tokenString string) (map[string]interface{}, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := jwt.MapClaims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(c.secret()), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	return claims, nil
}
