// Package access holds the identity checks shared by the registry components.
// Ownership is an identity comparison, not a role system.
package access

import (
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
)

// RequireOwner allows the call only when caller is the required identity.
// A zero required identity (renounced ownership) denies every caller,
// including the zero address.
func RequireOwner(caller, required domain.Address) error {
	if required.IsZero() || caller != required {
		return dErrors.New(dErrors.CodeUnauthorized, "owner is only allowed to call this method")
	}
	return nil
}

// RequireAddress rejects the sentinel address where a real identity is needed.
func RequireAddress(addr domain.Address) error {
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeInvalidAddress, "requires valid address")
	}
	return nil
}
