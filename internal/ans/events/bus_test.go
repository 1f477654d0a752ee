package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ans/pkg/domain"
)

func testEvent(name string) NameAssigned {
	return NameAssigned{
		Address:    domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"),
		Name:       name,
		AssignedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBus_DeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	first, cancelFirst := bus.Subscribe(4)
	defer cancelFirst()
	second, cancelSecond := bus.Subscribe(4)
	defer cancelSecond()

	require.NoError(t, bus.Publish(context.Background(), testEvent("alice")))

	assert.Equal(t, "alice", (<-first).Name)
	assert.Equal(t, "alice", (<-second).Name)
}

func TestBus_FullSubscriberDropsWithoutBlocking(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, cancel := bus.Subscribe(1)
	defer cancel()

	require.NoError(t, bus.Publish(context.Background(), testEvent("one")))
	require.NoError(t, bus.Publish(context.Background(), testEvent("two")))

	assert.Equal(t, "one", (<-ch).Name)
	assert.Equal(t, uint64(1), bus.Dropped())
}

func TestBus_CancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	require.NoError(t, bus.Publish(context.Background(), testEvent("ignored")))
}

func TestBus_CloseEndsSubscriptions(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(1)
	bus.Close()
	cancel()

	_, open := <-ch
	assert.False(t, open)

	late, _ := bus.Subscribe(1)
	_, open = <-late
	assert.False(t, open, "subscribing after close yields a closed channel")
}

func TestFanout_JoinsErrors(t *testing.T) {
	var delivered []string
	ok := PublisherFunc(func(_ context.Context, e NameAssigned) error {
		delivered = append(delivered, e.Name)
		return nil
	})
	boom := errors.New("sink down")
	failing := PublisherFunc(func(context.Context, NameAssigned) error { return boom })

	err := Fanout{ok, nil, failing, ok}.Publish(context.Background(), testEvent("bob"))

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"bob", "bob"}, delivered)
}
