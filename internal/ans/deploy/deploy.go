// Package deploy brings up a Registry and its Storage over one backend:
// registry first, storage second owned by the registry, then the one-time
// storage binding. Component addresses derive from the deployer identity, so
// running Setup again over the same backend finds the same components.
package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"ans/internal/ans/registry"
	"ans/internal/ans/storage"
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
)

const (
	registryNonce = 0
	storageNonce  = 1
)

// Config describes one deployment.
type Config struct {
	Deployer domain.Address
	Owner    domain.Address

	RegistryOptions []registry.Option
	StorageOptions  []storage.Option
	Logger          *slog.Logger
}

// Deployment is the wired pair of components.
type Deployment struct {
	Registry        *registry.Registry
	Storage         *storage.Storage
	RegistryAddress domain.Address
	StorageAddress  domain.Address
}

// Addresses returns the registry and storage addresses a deployer yields.
func Addresses(deployer domain.Address) (registryAddr, storageAddr domain.Address) {
	return domain.DeriveAddress(deployer, registryNonce), domain.DeriveAddress(deployer, storageNonce)
}

// Setup deploys or reattaches to the components for cfg.Deployer.
func Setup(ctx context.Context, cfg Config, backend storage.Backend) (*Deployment, error) {
	if cfg.Deployer.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidAddress, "deployer address is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registryAddr, storageAddr := Addresses(cfg.Deployer)
	directory := registry.NewStaticDirectory()

	reg, err := registry.New(registryAddr, cfg.Owner, backend, directory, cfg.RegistryOptions...)
	if err != nil {
		return nil, fmt.Errorf("deploy registry: %w", err)
	}
	st, err := storage.New(ctx, storageAddr, registryAddr, backend, cfg.StorageOptions...)
	if err != nil {
		return nil, fmt.Errorf("deploy storage: %w", err)
	}
	directory.Register(storageAddr, st)

	err = reg.SetStorageAddress(ctx, cfg.Owner, storageAddr)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "registry deployed",
			"registry", registryAddr.Hex(),
			"storage", storageAddr.Hex(),
			"owner", cfg.Owner.Hex(),
		)
	case dErrors.HasCode(err, dErrors.CodeAlreadySet):
		bound, err := reg.StorageAddress(ctx)
		if err != nil {
			return nil, fmt.Errorf("read storage binding: %w", err)
		}
		if bound != storageAddr {
			return nil, fmt.Errorf("registry %s is bound to storage %s, expected %s", registryAddr.Hex(), bound.Hex(), storageAddr.Hex())
		}
		logger.InfoContext(ctx, "registry reattached",
			"registry", registryAddr.Hex(),
			"storage", storageAddr.Hex(),
		)
	default:
		return nil, fmt.Errorf("bind storage: %w", err)
	}

	return &Deployment{
		Registry:        reg,
		Storage:         st,
		RegistryAddress: registryAddr,
		StorageAddress:  storageAddr,
	}, nil
}
