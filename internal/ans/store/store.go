// Package store implements the name-binding backends: in-memory, PostgreSQL
// and Redis. Every backend keeps the two directions of a binding in one
// atomic write and exposes write-once / compare-guarded component slots.
package store

import (
	"context"
	"fmt"
	"strings"

	"ans/pkg/domain"
	"ans/pkg/platform/sentinel"
)

// Reader is the read side shared by every backend.
type Reader interface {
	// AddressOf returns the address bound to name or sentinel.ErrNotFound.
	AddressOf(ctx context.Context, name string) (domain.Address, error)
	// NameOf returns the name bound to addr or sentinel.ErrNotFound.
	NameOf(ctx context.Context, addr domain.Address) (string, error)
	// Slot returns the value stored under key or sentinel.ErrNotFound.
	Slot(ctx context.Context, key string) (domain.Address, error)
}

// Tx is the view handed to RunInTx callbacks. Reads observe the
// transaction's own writes; nothing is visible to others until commit.
type Tx interface {
	Reader
	// PutBinding writes both directions. Returns ErrNameBound or
	// ErrAddressBound if either side already exists.
	PutBinding(ctx context.Context, addr domain.Address, name string) error
	// InsertSlot creates key. Returns sentinel.ErrAlreadyUsed if it exists.
	InsertSlot(ctx context.Context, key string, value domain.Address) error
	// UpdateSlot overwrites an existing key. Returns sentinel.ErrNotFound if absent.
	UpdateSlot(ctx context.Context, key string, value domain.Address) error
}

var (
	ErrNameBound    = fmt.Errorf("name %w", sentinel.ErrAlreadyUsed)
	ErrAddressBound = fmt.Errorf("address %w", sentinel.ErrAlreadyUsed)
)

// SlotKey namespaces a component field, e.g. "0xabc.../owner".
func SlotKey(component domain.Address, field string) string {
	return strings.ToLower(component.Hex()) + "/" + field
}

// staged buffers a transaction's writes until commit.
type staged struct {
	names   map[string]domain.Address
	addrs   map[domain.Address]string
	slots   map[string]domain.Address
	created map[string]bool
	order   []stagedWrite
}

type stagedWrite struct {
	binding bool
	name    string
	addr    domain.Address
	key     string
	value   domain.Address
	insert  bool
}

func newStaged() *staged {
	return &staged{
		names:   make(map[string]domain.Address),
		addrs:   make(map[domain.Address]string),
		slots:   make(map[string]domain.Address),
		created: make(map[string]bool),
	}
}

func (s *staged) empty() bool {
	return len(s.order) == 0
}

func (s *staged) bind(addr domain.Address, name string) {
	s.names[name] = addr
	s.addrs[addr] = name
	s.order = append(s.order, stagedWrite{binding: true, name: name, addr: addr})
}

func (s *staged) setSlot(key string, value domain.Address, insert bool) {
	s.slots[key] = value
	if insert {
		s.created[key] = true
	}
	s.order = append(s.order, stagedWrite{key: key, value: value, insert: insert})
}
