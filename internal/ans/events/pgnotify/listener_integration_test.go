//go:build integration

package pgnotify_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ans/internal/ans/events"
	"ans/internal/ans/events/pgnotify"
	"ans/internal/ans/store"
	"ans/pkg/domain"
	"ans/pkg/testutil/containers"
)

type ListenerSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
}

func TestListenerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ListenerSuite))
}

func (s *ListenerSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
}

func (s *ListenerSuite) TestCommittedBindingReachesBus() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "name_bindings", "component_slots"))

	bus := events.NewBus()
	defer bus.Close()
	sub, unsubscribe := bus.Subscribe(4)
	defer unsubscribe()

	listener := pgnotify.NewListener(s.postgres.DSN, bus, pgnotify.WithChannel("ans_it"))
	done := make(chan error, 1)
	go func() { done <- listener.Run(ctx) }()

	pg := store.NewPostgres(s.postgres.DB, store.WithNotifyChannel("ans_it"))
	addr := domain.DeriveAddress(domain.ZeroAddress, 42)

	// Keep binding fresh names until the listener has subscribed and one arrives.
	for i := 0; ; i++ {
		name := "relay" + string(rune('a'+i))
		s.Require().NoError(pg.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
			return tx.PutBinding(ctx, domain.DeriveAddress(addr, uint64(i)), name)
		}))
		select {
		case ev := <-sub:
			s.Contains(ev.Name, "relay")
			cancel()
			s.NoError(<-done)
			return
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			s.FailNow("no notification received")
		}
	}
}
