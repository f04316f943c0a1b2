package apitest

import (
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// hmacSigner signs and verifies access tokens with a shared HS256 secret.
type hmacSigner struct {
	secret []byte
}

func newHMACSigner(secret string) *hmacSigner {
	return &hmacSigner{secret: []byte(secret)}
}

func (h *hmacSigner) sign(claims jwtlib.Claims) (string, error) {
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("[apitest sign] sign access token: %w", err)
	}
	return signed, nil
}

func (h *hmacSigner) verificationKey(token *jwtlib.Token) (any, error) {
	if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

// parse verifies raw and fills claims.
func (h *hmacSigner) parse(raw string, claims jwtlib.Claims) error {
	_, err := jwtlib.ParseWithClaims(raw, claims, h.verificationKey,
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	return err
}
