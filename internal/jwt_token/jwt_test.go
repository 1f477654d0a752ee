package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)
var caller = domain.MustParseAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
var expiresIn = time.Hour

func Test_GenerateCallerToken(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(caller, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	got, err := claims.Caller()
	require.NoError(t, err)
	assert.Equal(t, caller, got)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_GenerateCallerToken_ZeroAddress(t *testing.T) {
	_, err := jwtService.GenerateCallerToken(domain.ZeroAddress, expiresIn)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAddress))
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthenticated, "invalid token"))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(caller, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, dErrors.New(dErrors.CodeUnauthenticated, "token has expired"))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("other-key", "test-issuer", "test-audience")
	token, err := other.GenerateCallerToken(caller, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func Test_ValidateToken_WrongAudience(t *testing.T) {
	other := NewJWTService("test-signing-key", "test-issuer", "someone-else")
	token, err := other.GenerateCallerToken(caller, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func Test_ValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   caller.Hex(),
		Issuer:    "test-issuer",
		Audience:  []string{"test-audience"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(signed)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}

func Test_Adapter_MapsSubject(t *testing.T) {
	token, err := jwtService.GenerateCallerToken(caller, expiresIn)
	require.NoError(t, err)

	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, caller, claims.Caller)
	assert.NotEmpty(t, claims.JTI)
}

func Test_Adapter_RejectsNonAddressSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-an-address",
		Issuer:    "test-issuer",
		Audience:  []string{"test-audience"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = NewJWTServiceAdapter(jwtService).ValidateToken(signed)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthenticated))
}
