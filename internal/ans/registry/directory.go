package registry

import (
	"context"
	"sync"

	"ans/pkg/domain"
)

// Storage is the component the registry delegates to. The registry always
// calls it with its own address as caller.
type Storage interface {
	AssignName(ctx context.Context, caller, addr domain.Address, name string) error
	ResolveName(ctx context.Context, name string) (domain.Address, error)
	ResolveAddress(ctx context.Context, addr domain.Address) (string, error)
	Owner(ctx context.Context) (domain.Address, error)
	TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error
	RenounceOwnership(ctx context.Context, caller domain.Address) error
}

// Directory resolves a component address to a live Storage.
type Directory interface {
	Lookup(addr domain.Address) (Storage, bool)
}

// StaticDirectory is a Directory backed by a map, for in-process deployments.
type StaticDirectory struct {
	mu         sync.RWMutex
	components map[domain.Address]Storage
}

func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{components: make(map[domain.Address]Storage)}
}

// Register makes st reachable at addr.
func (d *StaticDirectory) Register(addr domain.Address, st Storage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.components[addr] = st
}

func (d *StaticDirectory) Lookup(addr domain.Address) (Storage, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	st, ok := d.components[addr]
	return st, ok
}
