package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so components can translate them into domain errors.
//
//   - ErrNotFound: no binding or slot exists for the key
//   - ErrAlreadyUsed: a unique key (name, address, write-once slot) is taken
//   - ErrConflict: a concurrent writer won; the transaction may be retried
//   - ErrUnavailable: the backend cannot be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
