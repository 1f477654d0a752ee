package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ans/pkg/domain"
	"ans/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

var caller = domain.MustParseAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")

func run(t *testing.T, v JWTValidator, header string) (*httptest.ResponseRecorder, bool, domain.Address) {
	t.Helper()
	var reached bool
	var seen domain.Address
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		seen, _ = requestcontext.Caller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodPost, "/v1/names", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	RequireCaller(v, logger)(next).ServeHTTP(rec, req)
	return rec, reached, seen
}

func TestRequireCaller(t *testing.T) {
	t.Run("valid token sets the caller", func(t *testing.T) {
		rec, reached, seen := run(t, stubValidator{claims: &JWTClaims{Caller: caller, JTI: "j"}}, "Bearer ok")
		assert.True(t, reached)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, caller, seen)
	})

	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic abc",
		"empty token":    "Bearer ",
	} {
		t.Run(name, func(t *testing.T) {
			rec, reached, _ := run(t, stubValidator{claims: &JWTClaims{Caller: caller}}, header)
			assert.False(t, reached)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	t.Run("invalid token", func(t *testing.T) {
		rec, reached, _ := run(t, stubValidator{err: errors.New("bad signature")}, "Bearer forged")
		assert.False(t, reached)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "unauthenticated", body["error"])
	})
}
