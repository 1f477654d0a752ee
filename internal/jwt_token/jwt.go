package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
)

// Claims identifies a caller. The subject is the caller's hex address.
type Claims struct {
	jwt.RegisteredClaims
}

// Caller parses the subject into an address.
func (c *Claims) Caller() (domain.Address, error) {
	return domain.ParseAddress(c.Subject)
}

// JWTService issues and validates HS256 caller tokens.
type JWTService struct {
	signingKey []byte
	issuer     string
	audience   string
}

func NewJWTService(signingKey string, issuer string, audience string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
	}
}

// GenerateCallerToken signs a token asserting caller's identity.
func (s *JWTService) GenerateCallerToken(caller domain.Address, expiresIn time.Duration) (string, error) {
	if caller.IsZero() {
		return "", dErrors.New(dErrors.CodeInvalidAddress, "requires valid address")
	}
	now := time.Now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", err
	}
	return signedToken, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthenticated, "token has expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "invalid token claims")
	}
	return claims, nil
}
