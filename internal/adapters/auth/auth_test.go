package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWT_IssueVerify(t *testing.T) {
	m := NewJWTManager("s3cret", time.Hour)

	tok, exp, err := m.Issue("65a1b2c3d4e5f60718293a4b")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	uid, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "65a1b2c3d4e5f60718293a4b", uid)
}

func TestJWT_RejectsWrongSecretAndExpired(t *testing.T) {
	m := NewJWTManager("s3cret", time.Hour)
	tok, _, err := m.Issue("u1")
	require.NoError(t, err)

	_, err = NewJWTManager("other", time.Hour).Verify(tok)
	assert.Error(t, err)

	later := NewJWTManager("s3cret", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Verify(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWT_RejectsNoneAlg(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("s3cret", time.Hour).Verify(s)
	assert.Error(t, err)
}

func TestBcrypt(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost) // keep the test fast
	hash, err := h.Hash("secret_1")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "secret_1"))
	assert.Error(t, h.Compare(hash, "secret_2"))
	assert.Equal(t, DefaultCost, NewBcryptHasher(99).cost)
}
