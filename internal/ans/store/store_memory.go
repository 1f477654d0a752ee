package store

import (
	"context"
	"sync"

	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
	"ans/pkg/platform/sentinel"
)

// InMemory keeps bindings in two inverse maps guarded by one lock. RunInTx
// holds the write lock for the whole callback, so transactions are serial.
type InMemory struct {
	mu     sync.RWMutex
	byName map[string]domain.Address
	byAddr map[domain.Address]string
	slots  map[string]domain.Address
}

func NewInMemory() *InMemory {
	return &InMemory{
		byName: make(map[string]domain.Address),
		byAddr: make(map[domain.Address]string),
		slots:  make(map[string]domain.Address),
	}
}

func (s *InMemory) AddressOf(_ context.Context, name string) (domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if addr, ok := s.byName[name]; ok {
		return addr, nil
	}
	return domain.Address{}, sentinel.ErrNotFound
}

func (s *InMemory) NameOf(_ context.Context, addr domain.Address) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if name, ok := s.byAddr[addr]; ok {
		return name, nil
	}
	return "", sentinel.ErrNotFound
}

func (s *InMemory) Slot(_ context.Context, key string) (domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.slots[key]; ok {
		return v, nil
	}
	return domain.Address{}, sentinel.ErrNotFound
}

// RunInTx runs fn against a staged view and applies its writes only when fn
// returns nil.
func (s *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{store: s, staged: newStaged()}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for _, w := range tx.staged.order {
		if w.binding {
			s.byName[w.name] = w.addr
			s.byAddr[w.addr] = w.name
			continue
		}
		s.slots[w.key] = w.value
	}
	return nil
}

// Len returns the number of bindings.
func (s *InMemory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// memoryTx reads through staged writes to the maps; the caller holds s.mu.
type memoryTx struct {
	store  *InMemory
	staged *staged
}

func (t *memoryTx) AddressOf(_ context.Context, name string) (domain.Address, error) {
	if addr, ok := t.staged.names[name]; ok {
		return addr, nil
	}
	if addr, ok := t.store.byName[name]; ok {
		return addr, nil
	}
	return domain.Address{}, sentinel.ErrNotFound
}

func (t *memoryTx) NameOf(_ context.Context, addr domain.Address) (string, error) {
	if name, ok := t.staged.addrs[addr]; ok {
		return name, nil
	}
	if name, ok := t.store.byAddr[addr]; ok {
		return name, nil
	}
	return "", sentinel.ErrNotFound
}

func (t *memoryTx) Slot(_ context.Context, key string) (domain.Address, error) {
	if v, ok := t.staged.slots[key]; ok {
		return v, nil
	}
	if v, ok := t.store.slots[key]; ok {
		return v, nil
	}
	return domain.Address{}, sentinel.ErrNotFound
}

func (t *memoryTx) PutBinding(ctx context.Context, addr domain.Address, name string) error {
	if _, err := t.AddressOf(ctx, name); err == nil {
		return ErrNameBound
	}
	if _, err := t.NameOf(ctx, addr); err == nil {
		return ErrAddressBound
	}
	t.staged.bind(addr, name)
	return nil
}

func (t *memoryTx) InsertSlot(ctx context.Context, key string, value domain.Address) error {
	if _, err := t.Slot(ctx, key); err == nil {
		return sentinel.ErrAlreadyUsed
	}
	t.staged.setSlot(key, value, true)
	return nil
}

func (t *memoryTx) UpdateSlot(ctx context.Context, key string, value domain.Address) error {
	if _, err := t.Slot(ctx, key); err != nil {
		return err
	}
	t.staged.setSlot(key, value, false)
	return nil
}
