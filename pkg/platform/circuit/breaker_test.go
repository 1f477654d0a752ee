package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ans/pkg/testutil"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestBreaker() (*Breaker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("kafka",
		WithFailureThreshold(3),
		WithSuccessThreshold(2),
		WithCooldown(10*time.Second),
		WithClock(clock.Now),
	)
	return b, clock
}

func TestBreakerDefaults(t *testing.T) {
	b := New("sink")
	assert.Equal(t, "sink", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerLifecycle(t *testing.T) {
	testutil.Given(t, "a closed breaker", func(t *testing.T) {
		b, _ := newTestBreaker()

		testutil.When(t, "failures stay below the threshold", func(t *testing.T) {
			assert.False(t, b.RecordFailure().Opened)
			assert.False(t, b.RecordFailure().Opened)

			testutil.Then(t, "calls are still allowed", func(t *testing.T) {
				assert.True(t, b.Allow())
				assert.False(t, b.IsOpen())
			})
		})

		testutil.When(t, "a success lands before the threshold", func(t *testing.T) {
			b.RecordSuccess()
			b.RecordFailure()
			b.RecordFailure()

			testutil.Then(t, "the failure count started over", func(t *testing.T) {
				assert.False(t, b.IsOpen())
			})
		})
	})

	testutil.Given(t, "a breaker that reaches the failure threshold", func(t *testing.T) {
		b, clock := newTestBreaker()
		b.RecordFailure()
		b.RecordFailure()
		change := b.RecordFailure()

		testutil.Then(t, "it opens and rejects calls", func(t *testing.T) {
			assert.True(t, change.Opened)
			assert.Equal(t, "open", b.State().String())
			assert.False(t, b.Allow())
		})

		testutil.When(t, "the cooldown elapses", func(t *testing.T) {
			clock.Advance(10 * time.Second)

			testutil.Then(t, "a probe is allowed", func(t *testing.T) {
				assert.True(t, b.Allow())
			})
		})

		testutil.When(t, "the probe fails", func(t *testing.T) {
			change := b.RecordFailure()

			testutil.Then(t, "the cooldown restarts without a new transition", func(t *testing.T) {
				assert.False(t, change.Opened)
				assert.False(t, b.Allow())
			})
		})

		testutil.When(t, "enough probes succeed after the next cooldown", func(t *testing.T) {
			clock.Advance(10 * time.Second)
			first := b.RecordSuccess()
			second := b.RecordSuccess()

			testutil.Then(t, "it closes on the last one", func(t *testing.T) {
				assert.False(t, first.Closed)
				assert.True(t, second.Closed)
				assert.Equal(t, StateClosed, b.State())
				assert.True(t, b.Allow())
			})
		})
	})

	testutil.Given(t, "an open breaker mid-recovery", func(t *testing.T) {
		b, _ := newTestBreaker()
		for range 3 {
			b.RecordFailure()
		}
		b.RecordSuccess()

		testutil.When(t, "a failure interrupts the probes", func(t *testing.T) {
			b.RecordFailure()
			b.RecordSuccess()

			testutil.Then(t, "the success count started over", func(t *testing.T) {
				assert.True(t, b.IsOpen())
				assert.True(t, b.RecordSuccess().Closed)
			})
		})
	})
}
