package handler

import "ans/pkg/domain"

// NameResponse answers forward lookups and assignments.
type NameResponse struct {
	Name    string         `json:"name"`
	Address domain.Address `json:"address"`
	Bound   bool           `json:"bound"`
}

// AddressResponse answers reverse lookups.
type AddressResponse struct {
	Address domain.Address `json:"address"`
	Name    string         `json:"name"`
	Bound   bool           `json:"bound"`
}

// OwnerResponse reports the administrative state.
type OwnerResponse struct {
	Owner          domain.Address `json:"owner"`
	StorageAddress domain.Address `json:"storage_address"`
	StorageOwner   domain.Address `json:"storage_owner"`
}

// StorageResponse reports the storage component's identity and owner.
type StorageResponse struct {
	Address domain.Address `json:"address"`
	Owner   domain.Address `json:"owner"`
}
