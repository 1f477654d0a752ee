// Package storage is the leaf component holding the canonical name/address
// bindings. It trusts exactly one identity, its owner, to write.
package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ans/internal/ans/access"
	"ans/internal/ans/events"
	"ans/internal/ans/metrics"
	"ans/internal/ans/store"
	"ans/internal/platform/telemetry"
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
	"ans/pkg/platform/sentinel"
	"ans/pkg/requestcontext"
)

const component = "storage"

// Backend is the persistence the component runs on.
type Backend interface {
	store.Reader
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error
}

// Storage maps names to addresses and back. Every mutation runs in one
// backend transaction that re-reads the owner, so an ownership change and a
// write can never interleave.
type Storage struct {
	self      domain.Address
	ownerKey  string
	backend   Backend
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures a Storage.
type Option func(*Storage)

// WithPublisher sets the sink for NameAssigned events.
func WithPublisher(p events.Publisher) Option {
	return func(s *Storage) {
		s.publisher = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Storage) {
		s.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Storage) {
		s.logger = l
	}
}

// New constructs the component at address self. The owner is recorded once;
// a backend that already holds one keeps it, so restarts are idempotent.
func New(ctx context.Context, self, owner domain.Address, backend Backend, opts ...Option) (*Storage, error) {
	if err := access.RequireAddress(self); err != nil {
		return nil, err
	}
	if err := access.RequireAddress(owner); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "storage backend is required")
	}

	s := &Storage{
		self:     self,
		ownerKey: store.SlotKey(self, "owner"),
		backend:  backend,
		logger:   slog.Default(),
		tracer:   telemetry.Tracer("ans/storage"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	err := backend.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.InsertSlot(ctx, s.ownerKey, owner)
	})
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "storage owner recorded", "storage", self.Hex(), "owner", owner.Hex())
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		s.logger.InfoContext(ctx, "storage owner already recorded", "storage", self.Hex())
	default:
		return nil, translate(err, "failed to record storage owner")
	}
	return s, nil
}

// Address is the component's own identity.
func (s *Storage) Address() domain.Address {
	return s.self
}

// Owner returns the current owner, or the zero address once renounced.
func (s *Storage) Owner(ctx context.Context) (domain.Address, error) {
	owner, err := s.backend.Slot(ctx, s.ownerKey)
	if err != nil {
		return domain.Address{}, translate(err, "failed to read storage owner")
	}
	return owner, nil
}

// AssignName binds name to addr on behalf of caller. Checks run in order:
// caller is owner, addr is non-zero, name is free, addr is free.
func (s *Storage) AssignName(ctx context.Context, caller, addr domain.Address, name string) (err error) {
	ctx, span := s.tracer.Start(ctx, "storage.AssignName", trace.WithAttributes(
		attribute.String("ans.address", addr.Hex()),
		attribute.String("ans.name", name),
	))
	defer func() { telemetry.End(span, err) }()

	err = s.backend.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		if err := access.RequireAddress(addr); err != nil {
			return err
		}
		if _, err := tx.AddressOf(ctx, name); err == nil {
			return dErrors.New(dErrors.CodeNameTaken, "name already taken")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		if _, err := tx.NameOf(ctx, addr); err == nil {
			return dErrors.New(dErrors.CodeAddressAlreadyAssigned, "address already has a name")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		return tx.PutBinding(ctx, addr, name)
	})
	if err != nil {
		err = translate(err, "failed to assign name")
		s.recordRejection(ctx, "assign_name", err)
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementNamesAssigned()
	}
	s.publish(ctx, events.NameAssigned{Address: addr, Name: name, AssignedAt: requestcontext.Now(ctx).UTC()})
	return nil
}

// ResolveName returns the address bound to name, or the zero address.
func (s *Storage) ResolveName(ctx context.Context, name string) (domain.Address, error) {
	start := time.Now()
	addr, err := s.backend.AddressOf(ctx, name)
	if s.metrics != nil {
		s.metrics.ObserveLookup("name", start)
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return domain.Address{}, nil
	}
	if err != nil {
		return domain.Address{}, translate(err, "failed to resolve name")
	}
	return addr, nil
}

// ResolveAddress returns the name bound to addr, or "".
func (s *Storage) ResolveAddress(ctx context.Context, addr domain.Address) (string, error) {
	start := time.Now()
	name, err := s.backend.NameOf(ctx, addr)
	if s.metrics != nil {
		s.metrics.ObserveLookup("address", start)
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", translate(err, "failed to resolve address")
	}
	return name, nil
}

// TransferOwnership hands write authority to newOwner.
func (s *Storage) TransferOwnership(ctx context.Context, caller, newOwner domain.Address) (err error) {
	ctx, span := s.tracer.Start(ctx, "storage.TransferOwnership", trace.WithAttributes(
		attribute.String("ans.new_owner", newOwner.Hex()),
	))
	defer func() { telemetry.End(span, err) }()

	err = s.backend.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		if err := access.RequireAddress(newOwner); err != nil {
			return err
		}
		return tx.UpdateSlot(ctx, s.ownerKey, newOwner)
	})
	if err != nil {
		err = translate(err, "failed to transfer ownership")
		s.recordRejection(ctx, "transfer_ownership", err)
		return err
	}
	s.logger.InfoContext(ctx, "storage ownership transferred",
		"storage", s.self.Hex(),
		"previous_owner", caller.Hex(),
		"new_owner", newOwner.Hex(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// RenounceOwnership sets the owner to the zero address. No caller can write
// afterwards.
func (s *Storage) RenounceOwnership(ctx context.Context, caller domain.Address) (err error) {
	ctx, span := s.tracer.Start(ctx, "storage.RenounceOwnership")
	defer func() { telemetry.End(span, err) }()

	err = s.backend.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := s.requireOwner(ctx, tx, caller); err != nil {
			return err
		}
		return tx.UpdateSlot(ctx, s.ownerKey, domain.ZeroAddress)
	})
	if err != nil {
		err = translate(err, "failed to renounce ownership")
		s.recordRejection(ctx, "renounce_ownership", err)
		return err
	}
	s.logger.WarnContext(ctx, "storage ownership renounced",
		"storage", s.self.Hex(),
		"previous_owner", caller.Hex(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

func (s *Storage) requireOwner(ctx context.Context, tx store.Tx, caller domain.Address) error {
	owner, err := tx.Slot(ctx, s.ownerKey)
	if err != nil {
		return err
	}
	return access.RequireOwner(caller, owner)
}

func (s *Storage) publish(ctx context.Context, event events.NameAssigned) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish name assignment",
			"error", err,
			"name", event.Name,
			"address", event.Address.Hex(),
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Storage) recordRejection(ctx context.Context, operation string, err error) {
	code := dErrors.CodeOf(err)
	if s.metrics != nil {
		s.metrics.RecordRejection(component, operation, string(code))
	}
	if code == dErrors.CodeInternal || code == dErrors.CodeTimeout {
		s.logger.ErrorContext(ctx, "storage operation failed",
			"operation", operation,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

// translate keeps coded errors and maps store facts onto domain codes.
func translate(err error, msg string) error {
	var coded *dErrors.Error
	switch {
	case errors.As(err, &coded):
		return err
	case errors.Is(err, store.ErrNameBound):
		return dErrors.New(dErrors.CodeNameTaken, "name already taken")
	case errors.Is(err, store.ErrAddressBound):
		return dErrors.New(dErrors.CodeAddressAlreadyAssigned, "address already has a name")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage owner missing")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
