package jwttoken

import (
	authmw "ans/pkg/platform/middleware/auth"
	dErrors "ans/pkg/domain-errors"
)

// JWTServiceAdapter exposes JWTService as the auth middleware's validator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	caller, err := claims.Caller()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "token subject is not an address")
	}
	return &authmw.JWTClaims{
		Caller: caller,
		JTI:    claims.ID,
	}, nil
}
