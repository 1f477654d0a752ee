package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"ans/internal/ans/metrics"
	"ans/internal/ans/storage"
	"ans/internal/ans/store"
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
)

var (
	owner       = domain.MustParseAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	acct1       = domain.MustParseAddress("0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0")
	registryAt  = domain.DeriveAddress(owner, 0)
	storageAt   = domain.DeriveAddress(owner, 1)
	unreachable = domain.DeriveAddress(owner, 99)
)

type RegistrySuite struct {
	suite.Suite
	ctx       context.Context
	backend   *store.InMemory
	directory *StaticDirectory
	storage   *storage.Storage
	metrics   *metrics.Metrics
	registry  *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = store.NewInMemory()
	s.directory = NewStaticDirectory()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())

	s.registry = s.newRegistry()

	st, err := storage.New(s.ctx, storageAt, registryAt, s.backend)
	s.Require().NoError(err)
	s.storage = st
	s.directory.Register(storageAt, st)

	s.Require().NoError(s.registry.SetStorageAddress(s.ctx, owner, storageAt))
}

func (s *RegistrySuite) newRegistry(opts ...Option) *Registry {
	opts = append([]Option{WithMetrics(s.metrics)}, opts...)
	r, err := New(registryAt, owner, s.backend, s.directory, opts...)
	s.Require().NoError(err)
	return r
}

// unbound returns a registry at a fresh address with no storage binding.
func (s *RegistrySuite) unbound() *Registry {
	r, err := New(domain.DeriveAddress(owner, 7), owner, store.NewInMemory(), s.directory)
	s.Require().NoError(err)
	return r
}

func (s *RegistrySuite) requireCode(err error, code dErrors.Code) {
	s.T().Helper()
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), "error: %v", err)
}

func (s *RegistrySuite) TestConstructor() {
	s.Equal(owner, s.registry.Owner())
	s.Equal(registryAt, s.registry.Address())

	_, err := New(registryAt, domain.ZeroAddress, s.backend, s.directory)
	s.requireCode(err, dErrors.CodeInvalidAddress)
}

func (s *RegistrySuite) TestSetStorageAddress() {
	s.Run("resolving before binding fails, after binding returns the sentinel", func() {
		r := s.unbound()
		_, err := r.ResolveName(s.ctx, "abc")
		s.requireCode(err, dErrors.CodeStorageNotConfigured)

		s.Require().NoError(r.SetStorageAddress(s.ctx, owner, storageAt))
		addr, err := r.ResolveName(s.ctx, "abc")
		s.Require().NoError(err)
		s.True(addr.IsZero())

		bound, err := r.StorageAddress(s.ctx)
		s.Require().NoError(err)
		s.Equal(storageAt, bound)
	})

	s.Run("non-owner is rejected", func() {
		s.requireCode(s.unbound().SetStorageAddress(s.ctx, acct1, storageAt), dErrors.CodeUnauthorized)
	})

	s.Run("zero address is rejected", func() {
		s.requireCode(s.unbound().SetStorageAddress(s.ctx, owner, domain.ZeroAddress), dErrors.CodeInvalidAddress)
	})

	s.Run("second binding is rejected", func() {
		s.requireCode(s.registry.SetStorageAddress(s.ctx, owner, storageAt), dErrors.CodeAlreadySet)
		s.requireCode(s.registry.SetStorageAddress(s.ctx, owner, unreachable), dErrors.CodeAlreadySet)
		s.requireCode(s.registry.SetStorageAddress(s.ctx, acct1, unreachable), dErrors.CodeAlreadySet)
		s.requireCode(s.registry.SetStorageAddress(s.ctx, owner, domain.ZeroAddress), dErrors.CodeAlreadySet)
	})

	s.Run("binding survives a registry restart", func() {
		again := s.newRegistry()
		s.requireCode(again.SetStorageAddress(s.ctx, owner, unreachable), dErrors.CodeAlreadySet)
		bound, err := again.StorageAddress(s.ctx)
		s.Require().NoError(err)
		s.Equal(storageAt, bound)
	})

	s.Run("unreachable component reads as not configured", func() {
		r := s.unbound()
		s.Require().NoError(r.SetStorageAddress(s.ctx, owner, unreachable))
		_, err := r.ResolveAddress(s.ctx, owner)
		s.requireCode(err, dErrors.CodeStorageNotConfigured)
	})
}

func (s *RegistrySuite) TestAssignName() {
	s.Run("assigns and lowercases", func() {
		s.Require().NoError(s.registry.AssignName(s.ctx, owner, "ABCDEFGH"))
		addr, err := s.registry.ResolveName(s.ctx, "abcdefgh")
		s.Require().NoError(err)
		s.Equal(owner, addr)
		name, err := s.registry.ResolveAddress(s.ctx, owner)
		s.Require().NoError(err)
		s.Equal("abcdefgh", name)
	})

	s.Run("name taken", func() {
		s.requireCode(s.registry.AssignName(s.ctx, acct1, "abcdefgh"), dErrors.CodeNameTaken)
		s.requireCode(s.registry.AssignName(s.ctx, acct1, "AbCdEfGh"), dErrors.CodeNameTaken)
	})

	s.Run("address already assigned", func() {
		s.requireCode(s.registry.AssignName(s.ctx, owner, "other"), dErrors.CodeAddressAlreadyAssigned)
	})

	s.Run("storage not configured beats validation", func() {
		s.requireCode(s.unbound().AssignName(s.ctx, owner, ""), dErrors.CodeStorageNotConfigured)
	})
}

func (s *RegistrySuite) TestAssignNameValidation() {
	tests := []struct {
		name string
		code dErrors.Code
	}{
		{"", dErrors.CodeTooShort},
		{"123456789012345678901", dErrors.CodeTooLong},
		{"0x1234567890", dErrors.CodeHexStringNotAllowed},
		{"0xzz", dErrors.CodeHexStringNotAllowed},
		{"abc!", dErrors.CodeInvalidCharacters},
		{"12345678)", dErrors.CodeInvalidCharacters},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.requireCode(s.registry.AssignName(s.ctx, owner, tt.name), tt.code)
		})
	}
	name, err := s.registry.ResolveAddress(s.ctx, owner)
	s.Require().NoError(err)
	s.Empty(name, "rejected names never reach storage")
	s.Equal(float64(1), testutil.ToFloat64(s.metrics.Rejections.WithLabelValues("registry", "assign_name", "name_too_short")))
}

func (s *RegistrySuite) TestResolveNameDoesNotValidate() {
	addr, err := s.registry.ResolveName(s.ctx, "0x!!not a valid name at all!!")
	s.Require().NoError(err)
	s.True(addr.IsZero())
}

func (s *RegistrySuite) TestTransferStorageOwnership() {
	s.requireCode(s.registry.TransferStorageOwnership(s.ctx, acct1, acct1), dErrors.CodeUnauthorized)
	s.requireCode(s.registry.TransferStorageOwnership(s.ctx, owner, domain.ZeroAddress), dErrors.CodeInvalidAddress)
	s.requireCode(s.unbound().TransferStorageOwnership(s.ctx, owner, acct1), dErrors.CodeStorageNotConfigured)
	s.requireCode(s.unbound().TransferStorageOwnership(s.ctx, acct1, acct1), dErrors.CodeUnauthorized)

	s.Require().NoError(s.registry.TransferStorageOwnership(s.ctx, owner, acct1))
	got, err := s.registry.StorageOwner(s.ctx)
	s.Require().NoError(err)
	s.Equal(acct1, got)

	s.requireCode(s.registry.AssignName(s.ctx, owner, "helloworld"), dErrors.CodeUnauthorized)
	s.requireCode(s.registry.TransferStorageOwnership(s.ctx, owner, owner), dErrors.CodeUnauthorized)
}

func (s *RegistrySuite) TestRenounceStorageOwnership() {
	s.requireCode(s.registry.RenounceStorageOwnership(s.ctx, acct1), dErrors.CodeUnauthorized)
	s.requireCode(s.unbound().RenounceStorageOwnership(s.ctx, owner), dErrors.CodeStorageNotConfigured)

	s.Require().NoError(s.registry.RenounceStorageOwnership(s.ctx, owner))
	got, err := s.storage.Owner(s.ctx)
	s.Require().NoError(err)
	s.True(got.IsZero())

	s.requireCode(s.registry.AssignName(s.ctx, owner, "helloworld"), dErrors.CodeUnauthorized)
	s.requireCode(s.registry.RenounceStorageOwnership(s.ctx, owner), dErrors.CodeUnauthorized)
	s.requireCode(s.registry.TransferStorageOwnership(s.ctx, owner, acct1), dErrors.CodeUnauthorized)
}

func (s *RegistrySuite) TestStorageOwnerWhileUnbound() {
	got, err := s.unbound().StorageOwner(s.ctx)
	s.Require().NoError(err)
	s.True(got.IsZero())

	got, err = s.registry.StorageOwner(s.ctx)
	s.Require().NoError(err)
	s.Equal(registryAt, got)
}

type countingStorage struct {
	Storage
	resolveNames     atomic.Int32
	resolveAddresses atomic.Int32
	gate             chan struct{}
}

func (c *countingStorage) ResolveName(ctx context.Context, name string) (domain.Address, error) {
	c.resolveNames.Add(1)
	if c.gate != nil {
		<-c.gate
	}
	if err := ctx.Err(); err != nil {
		return domain.Address{}, err
	}
	return c.Storage.ResolveName(ctx, name)
}

func (c *countingStorage) ResolveAddress(ctx context.Context, addr domain.Address) (string, error) {
	c.resolveAddresses.Add(1)
	return c.Storage.ResolveAddress(ctx, addr)
}

func (s *RegistrySuite) cachedRegistry(counting *countingStorage) *Registry {
	dir := NewStaticDirectory()
	dir.Register(storageAt, counting)
	r, err := New(registryAt, owner, s.backend, dir, WithResolveCache(time.Minute), WithMetrics(s.metrics))
	s.Require().NoError(err)
	return r
}

func (s *RegistrySuite) TestResolveCacheStoresOnlyBoundResults() {
	counting := &countingStorage{Storage: s.storage}
	r := s.cachedRegistry(counting)

	addr, err := r.ResolveName(s.ctx, "late")
	s.Require().NoError(err)
	s.True(addr.IsZero())

	s.Require().NoError(r.AssignName(s.ctx, acct1, "late"))
	addr, err = r.ResolveName(s.ctx, "LATE")
	s.Require().NoError(err)
	s.Equal(acct1, addr, "an earlier miss is not cached")

	name, err := r.ResolveAddress(s.ctx, acct1)
	s.Require().NoError(err)
	s.Equal("late", name)

	s.Equal(int32(1), counting.resolveNames.Load())
	s.Equal(int32(0), counting.resolveAddresses.Load(), "assignment primes both directions")
	s.Equal(float64(2), testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("name", "hit"))+
		testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues("address", "hit")))
}

func (s *RegistrySuite) TestConcurrentResolvesShareOneLookup() {
	s.Require().NoError(s.registry.AssignName(s.ctx, acct1, "shared"))

	counting := &countingStorage{Storage: s.storage, gate: make(chan struct{})}
	r := s.cachedRegistry(counting)

	const goroutines = 16
	var wg sync.WaitGroup
	results := make([]domain.Address, goroutines)
	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			addr, err := r.ResolveName(s.ctx, "shared")
			s.NoError(err)
			results[idx] = addr
		}(i)
	}
	for counting.resolveNames.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	close(counting.gate)
	wg.Wait()

	for _, addr := range results {
		s.Equal(acct1, addr)
	}
	s.LessOrEqual(counting.resolveNames.Load(), int32(goroutines))
	s.GreaterOrEqual(counting.resolveNames.Load(), int32(1))
}

func (s *RegistrySuite) TestCancelledResolveDoesNotFailSharedWaiters() {
	s.Require().NoError(s.registry.AssignName(s.ctx, acct1, "shared"))

	counting := &countingStorage{Storage: s.storage, gate: make(chan struct{})}
	r := s.cachedRegistry(counting)

	firstCtx, cancelFirst := context.WithCancel(s.ctx)
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.ResolveName(firstCtx, "shared")
		firstErr <- err
	}()
	for counting.resolveNames.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	type result struct {
		addr domain.Address
		err  error
	}
	second := make(chan result, 1)
	go func() {
		addr, err := r.ResolveName(s.ctx, "shared")
		second <- result{addr, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	s.requireCode(<-firstErr, dErrors.CodeTimeout)

	close(counting.gate)
	got := <-second
	s.Require().NoError(got.err, "the first caller's cancellation does not reach other waiters")
	s.Equal(acct1, got.addr)
}
