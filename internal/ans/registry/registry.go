// Package registry is the public façade of the name service. It validates
// and normalizes names, enforces the registry owner's administrative rights,
// and delegates every mutation to the bound storage component.
package registry

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"ans/internal/ans/access"
	"ans/internal/ans/metrics"
	"ans/internal/ans/names"
	"ans/internal/ans/store"
	"ans/internal/platform/telemetry"
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
	"ans/pkg/platform/sentinel"
	"ans/pkg/requestcontext"
)

const component = "registry"

// SlotStore persists the write-once storage binding.
type SlotStore interface {
	Slot(ctx context.Context, key string) (domain.Address, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error
}

type binding struct {
	addr    domain.Address
	storage Storage
}

// Registry is the façade over one Storage. Its owner is fixed at
// construction; the storage binding goes from absent to present once.
type Registry struct {
	self       domain.Address
	owner      domain.Address
	storageKey string
	slots      SlotStore
	directory  Directory

	bound atomic.Pointer[binding]

	cache   *resolveCache
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithResolveCache caches bound lookups for ttl. Zero disables the cache.
func WithResolveCache(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.cache = newResolveCache(ttl)
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// New constructs the registry at address self, administered by owner.
func New(self, owner domain.Address, slots SlotStore, directory Directory, opts ...Option) (*Registry, error) {
	if err := access.RequireAddress(self); err != nil {
		return nil, err
	}
	if err := access.RequireAddress(owner); err != nil {
		return nil, err
	}
	if slots == nil || directory == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "registry requires a slot store and a directory")
	}
	r := &Registry{
		self:       self,
		owner:      owner,
		storageKey: store.SlotKey(self, "storage"),
		slots:      slots,
		directory:  directory,
		logger:     slog.Default(),
		tracer:     telemetry.Tracer("ans/registry"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// Address is the registry's own identity.
func (r *Registry) Address() domain.Address {
	return r.self
}

// Owner is the registry administrator.
func (r *Registry) Owner() domain.Address {
	return r.owner
}

// StorageAddress returns the bound storage address, or the zero address
// while unbound.
func (r *Registry) StorageAddress(ctx context.Context) (domain.Address, error) {
	if b := r.bound.Load(); b != nil {
		return b.addr, nil
	}
	addr, err := r.slots.Slot(ctx, r.storageKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.Address{}, nil
	}
	if err != nil {
		return domain.Address{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read storage address")
	}
	return addr, nil
}

// StorageOwner returns the bound storage's current owner, or the zero
// address while unbound.
func (r *Registry) StorageOwner(ctx context.Context) (domain.Address, error) {
	st, err := r.storage(ctx)
	if dErrors.HasCode(err, dErrors.CodeStorageNotConfigured) {
		return domain.Address{}, nil
	}
	if err != nil {
		return domain.Address{}, err
	}
	return st.Owner(ctx)
}

// SetStorageAddress binds the storage component. Owner only, once; a
// second call fails with AlreadySet whoever makes it.
func (r *Registry) SetStorageAddress(ctx context.Context, caller, addr domain.Address) (err error) {
	ctx, span := r.tracer.Start(ctx, "registry.SetStorageAddress", trace.WithAttributes(
		attribute.String("ans.storage", addr.Hex()),
	))
	defer func() {
		r.recordRejection(ctx, "set_storage_address", err)
		telemetry.End(span, err)
	}()

	// Once bound, every caller sees AlreadySet.
	err = r.slots.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.Slot(ctx, r.storageKey); err == nil {
			return sentinel.ErrAlreadyUsed
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		if err := access.RequireOwner(caller, r.owner); err != nil {
			return err
		}
		if err := access.RequireAddress(addr); err != nil {
			return err
		}
		return tx.InsertSlot(ctx, r.storageKey, addr)
	})
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.New(dErrors.CodeAlreadySet, "storage address already set")
	}
	if err != nil {
		return wrapInternal(err, "failed to set storage address")
	}

	if _, ok := r.directory.Lookup(addr); !ok {
		r.logger.WarnContext(ctx, "storage address bound to an unknown component",
			"storage", addr.Hex(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	r.logger.InfoContext(ctx, "storage address set",
		"registry", r.self.Hex(),
		"storage", addr.Hex(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// AssignName validates name, lowercases it, and binds it to caller.
func (r *Registry) AssignName(ctx context.Context, caller domain.Address, name string) (err error) {
	ctx, span := r.tracer.Start(ctx, "registry.AssignName", trace.WithAttributes(
		attribute.String("ans.caller", caller.Hex()),
	))
	defer func() {
		r.recordRejection(ctx, "assign_name", err)
		telemetry.End(span, err)
	}()

	st, err := r.storage(ctx)
	if err != nil {
		return err
	}
	normalized, err := names.Canonical(name)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("ans.name", normalized))

	if err := st.AssignName(ctx, r.self, caller, normalized); err != nil {
		return err
	}
	r.cache.remember(caller, normalized)
	return nil
}

// ResolveName lowercases name without validating it and returns the bound
// address, or the zero address.
func (r *Registry) ResolveName(ctx context.Context, name string) (domain.Address, error) {
	st, err := r.storage(ctx)
	if err != nil {
		return domain.Address{}, err
	}
	normalized := names.Normalize(name)

	if addr, ok := r.cache.address(normalized); ok {
		r.recordCache("name", true)
		return addr, nil
	}
	r.recordCache("name", false)

	v, err := r.shared(ctx, nameCacheKey(normalized), func(ctx context.Context) (any, error) {
		addr, err := st.ResolveName(ctx, normalized)
		if err != nil {
			return domain.Address{}, err
		}
		r.cache.remember(addr, normalized)
		return addr, nil
	})
	if err != nil {
		return domain.Address{}, err
	}
	return v.(domain.Address), nil
}

// ResolveAddress returns the name bound to addr, or "".
func (r *Registry) ResolveAddress(ctx context.Context, addr domain.Address) (string, error) {
	st, err := r.storage(ctx)
	if err != nil {
		return "", err
	}

	if name, ok := r.cache.name(addr); ok {
		r.recordCache("address", true)
		return name, nil
	}
	r.recordCache("address", false)

	v, err := r.shared(ctx, addressCacheKey(addr), func(ctx context.Context) (any, error) {
		name, err := st.ResolveAddress(ctx, addr)
		if err != nil {
			return "", err
		}
		r.cache.remember(addr, name)
		return name, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// shared runs fn once per key across concurrent callers. fn gets a context
// detached from any single caller's cancellation; each caller still stops
// waiting when its own ctx is done.
func (r *Registry) shared(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "resolution cancelled")
	}
}

// TransferStorageOwnership hands the storage component to newOwner. After
// this the registry can no longer write names.
func (r *Registry) TransferStorageOwnership(ctx context.Context, caller, newOwner domain.Address) (err error) {
	ctx, span := r.tracer.Start(ctx, "registry.TransferStorageOwnership", trace.WithAttributes(
		attribute.String("ans.new_owner", newOwner.Hex()),
	))
	defer func() {
		r.recordRejection(ctx, "transfer_storage_ownership", err)
		telemetry.End(span, err)
	}()

	if err := access.RequireOwner(caller, r.owner); err != nil {
		return err
	}
	st, err := r.storage(ctx)
	if err != nil {
		return err
	}
	return st.TransferOwnership(ctx, r.self, newOwner)
}

// RenounceStorageOwnership leaves the storage component without an owner,
// freezing the mapping.
func (r *Registry) RenounceStorageOwnership(ctx context.Context, caller domain.Address) (err error) {
	ctx, span := r.tracer.Start(ctx, "registry.RenounceStorageOwnership")
	defer func() {
		r.recordRejection(ctx, "renounce_storage_ownership", err)
		telemetry.End(span, err)
	}()

	if err := access.RequireOwner(caller, r.owner); err != nil {
		return err
	}
	st, err := r.storage(ctx)
	if err != nil {
		return err
	}
	return st.RenounceOwnership(ctx, r.self)
}

// storage returns the bound component. Once found the binding is kept in
// memory; it can never change.
func (r *Registry) storage(ctx context.Context) (Storage, error) {
	if b := r.bound.Load(); b != nil {
		return b.storage, nil
	}
	addr, err := r.slots.Slot(ctx, r.storageKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeStorageNotConfigured, "storage address not set")
	}
	if err != nil {
		return nil, wrapInternal(err, "failed to read storage address")
	}
	st, ok := r.directory.Lookup(addr)
	if !ok {
		return nil, dErrors.New(dErrors.CodeStorageNotConfigured, "storage component not reachable")
	}
	r.bound.Store(&binding{addr: addr, storage: st})
	return st, nil
}

func (r *Registry) recordCache(direction string, hit bool) {
	if r.metrics == nil || r.cache == nil {
		return
	}
	if hit {
		r.metrics.RecordCacheHit(direction)
		return
	}
	r.metrics.RecordCacheMiss(direction)
}

func (r *Registry) recordRejection(ctx context.Context, operation string, err error) {
	if err == nil {
		return
	}
	code := dErrors.CodeOf(err)
	if r.metrics != nil {
		r.metrics.RecordRejection(component, operation, string(code))
	}
	if code == dErrors.CodeInternal {
		r.logger.ErrorContext(ctx, "registry operation failed",
			"operation", operation,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func wrapInternal(err error, msg string) error {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
