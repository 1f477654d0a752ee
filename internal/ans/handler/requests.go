package handler

import (
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
)

// AssignNameRequest is the body of POST /v1/names. The name is validated by
// the registry so every rule reports its own code.
type AssignNameRequest struct {
	Name string `json:"name"`
}

func (r *AssignNameRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// SetStorageRequest is the body of PUT /v1/admin/storage.
type SetStorageRequest struct {
	Address string `json:"address"`

	parsedAddress domain.Address
}

func (r *SetStorageRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	addr, err := domain.ParseAddress(r.Address)
	if err != nil {
		return err
	}
	r.parsedAddress = addr
	return nil
}

// TransferOwnershipRequest is the body of PUT /v1/admin/storage/owner.
type TransferOwnershipRequest struct {
	NewOwner string `json:"new_owner"`

	parsedNewOwner domain.Address
}

func (r *TransferOwnershipRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	addr, err := domain.ParseAddress(r.NewOwner)
	if err != nil {
		return err
	}
	r.parsedNewOwner = addr
	return nil
}

// StorageAssignRequest is the body of POST /v1/storage/names. The name is
// written as given.
type StorageAssignRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`

	parsedAddress domain.Address
}

func (r *StorageAssignRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	addr, err := domain.ParseAddress(r.Address)
	if err != nil {
		return err
	}
	r.parsedAddress = addr
	return nil
}
