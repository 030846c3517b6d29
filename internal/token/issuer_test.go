package token

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/storynest/gateway/internal/errs"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestNewIssuerRejectsShortSecret(t *testing.T) {
	_, err := NewIssuer([]byte("short"))
	require.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)

	userID := uuid.Must(uuid.NewV4())
	raw, expires, err := iss.IssueAccess(userID, "google")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(AccessTTL), expires, time.Minute)

	parsedID, claims, err := iss.ParseAccess(raw)
	require.NoError(t, err)
	require.Equal(t, userID, parsedID)
	require.Equal(t, "google", claims.Provider)
	require.Equal(t, "access", claims.TokenType)
	require.Equal(t, Issuer, claims.RegisteredClaims.Issuer)
}

func TestParseExpired(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	iss.now = func() time.Time { return past }
	raw, _, err := iss.IssueAccess(uuid.Must(uuid.NewV4()), "apple")
	require.NoError(t, err)

	iss.now = time.Now
	_, _, err = iss.ParseAccess(raw)
	require.ErrorIs(t, err, errs.ErrExpiredToken)
}

func TestParseWrongSecret(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)
	other, err := NewIssuer([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	raw, _, err := iss.IssueAccess(uuid.Must(uuid.NewV4()), "google")
	require.NoError(t, err)

	_, _, err = other.ParseAccess(raw)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestParseRejectsForeignIssuer(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   uuid.Must(uuid.NewV4()).String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TokenType: "access",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, _, err = iss.ParseAccess(raw)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestParseRejectsNonAccessType(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   uuid.Must(uuid.NewV4()).String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TokenType: "refresh",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, _, err = iss.ParseAccess(raw)
	require.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	iss, err := NewIssuer(testSecret)
	require.NoError(t, err)

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, _, err := iss.ParseAccess(raw)
		require.ErrorIs(t, err, errs.ErrInvalidToken)
	}
}
