package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func testClaims(kind TokenKind, expiresIn time.Duration) *Claims {
	purpose := "user"
	if kind == KindRefresh {
		purpose = "user:false"
	}
	return &Claims{
		Role:     string(kind),
		Session:  42,
		Identity: "b71a2f2e-9f6d-11ee-8c90-0242ac120002",
		Purpose:  purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec(testSecret)
	claims := testClaims(KindAccess, time.Minute)

	token, err := codec.Encode(claims)
	require.NoError(t, err)

	decoded, err := codec.Decode(token, KindAccess, false)
	require.NoError(t, err)
	assert.Equal(t, claims.Role, decoded.Role)
	assert.Equal(t, claims.Session, decoded.Session)
	assert.Equal(t, claims.Identity, decoded.Identity)
	assert.Equal(t, claims.Purpose, decoded.Purpose)
	assert.Equal(t, claims.ExpiresAt.Unix(), decoded.ExpiresAt.Unix())
}

func TestCodecTamperedSignature(t *testing.T) {
	codec := NewCodec(testSecret)
	token, err := codec.Encode(testClaims(KindAccess, time.Minute))
	require.NoError(t, err)

	// flip the last byte of the signature segment
	tampered := []byte(token)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	_, err = codec.Decode(string(tampered), KindAccess, false)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecWrongSecret(t *testing.T) {
	token, err := NewCodec("other-secret").Encode(testClaims(KindAccess, time.Minute))
	require.NoError(t, err)

	_, err = NewCodec(testSecret).Decode(token, KindAccess, false)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecGarbage(t *testing.T) {
	codec := NewCodec(testSecret)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Decode(token, KindAccess, false)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", token)
	}
}

func TestCodecMissingFields(t *testing.T) {
	codec := NewCodec(testSecret)

	mutations := map[string]func(*Claims){
		"role":     func(c *Claims) { c.Role = "" },
		"session":  func(c *Claims) { c.Session = 0 },
		"identity": func(c *Claims) { c.Identity = "" },
		"purpose":  func(c *Claims) { c.Purpose = "" },
		"exp":      func(c *Claims) { c.ExpiresAt = nil },
	}
	for name, mutate := range mutations {
		claims := testClaims(KindAccess, time.Minute)
		mutate(claims)

		token, err := codec.Encode(claims)
		require.NoError(t, err)

		_, err = codec.Decode(token, KindAccess, false)
		assert.ErrorIs(t, err, ErrTokenInvalid, "missing %s", name)
	}
}

func TestCodecKindMismatch(t *testing.T) {
	codec := NewCodec(testSecret)

	token, err := codec.Encode(testClaims(KindRefresh, time.Minute))
	require.NoError(t, err)
	_, err = codec.Decode(token, KindAccess, false)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	token, err = codec.Encode(testClaims(KindAccess, time.Minute))
	require.NoError(t, err)
	_, err = codec.Decode(token, KindRefresh, false)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecExpired(t *testing.T) {
	codec := NewCodec(testSecret)
	token, err := codec.Encode(testClaims(KindAccess, -time.Minute))
	require.NoError(t, err)

	_, err = codec.Decode(token, KindAccess, false)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestCodecExpiredKindMismatch(t *testing.T) {
	// wrong kind beats expiry, with and without leniency
	codec := NewCodec(testSecret)
	token, err := codec.Encode(testClaims(KindRefresh, -time.Minute))
	require.NoError(t, err)

	_, err = codec.Decode(token, KindAccess, false)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = codec.Decode(token, KindAccess, true)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestCodecLenientRead(t *testing.T) {
	codec := NewCodec(testSecret)
	claims := testClaims(KindAccess, -time.Minute)
	token, err := codec.Encode(claims)
	require.NoError(t, err)

	decoded, err := codec.Decode(token, KindAccess, true)
	require.NoError(t, err)
	assert.Equal(t, claims.Session, decoded.Session)
	assert.Equal(t, claims.Identity, decoded.Identity)
}
