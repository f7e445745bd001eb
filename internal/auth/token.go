package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the signed payload of both access and refresh tokens.
// Session references the AccountSession row; Identity correlates one
// access/refresh pair. Purpose is "user" for access tokens and
// "user:true"/"user:false" for refresh tokens, carrying the remember_me
// flag chosen at login.
type Claims struct {
	Role     string `json:"role"`
	Session  uint   `json:"session"`
	Identity string `json:"identity"`
	Purpose  string `json:"type"`
	jwt.RegisteredClaims
}

// Codec signs and verifies token strings with an HMAC secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) Encode(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies tokenStr and returns its claims. The token must carry
// all required fields and its role must equal kind, otherwise
// ErrTokenInvalid. A past expiry yields ErrTokenExpired unless
// allowExpired is set, in which case the payload is re-read without
// signature verification so the refresh flow can recover the session
// and identity of an expired access token. The degraded read must never
// be used to authorize access.
func (c *Codec) Decode(tokenStr string, kind TokenKind, allowExpired bool) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})

	switch {
	case err == nil:
		return validateClaims(claims, kind)
	case errors.Is(err, jwt.ErrTokenExpired):
		// Claims are decoded before validation, so a wrong kind or a
		// missing field still rejects as invalid rather than expired.
		if _, verr := validateClaims(claims, kind); verr != nil {
			return nil, verr
		}
		if !allowExpired {
			return nil, ErrTokenExpired
		}
		reread := &Claims{}
		if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, reread); err != nil {
			return nil, ErrTokenInvalid
		}
		return validateClaims(reread, kind)
	default:
		return nil, ErrTokenInvalid
	}
}

func validateClaims(claims *Claims, kind TokenKind) (*Claims, error) {
	if claims.ExpiresAt == nil || claims.Role == "" || claims.Session == 0 ||
		claims.Identity == "" || claims.Purpose == "" {
		return nil, ErrTokenInvalid
	}
	if claims.Role != string(kind) {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
