package storage

import (
	"context"
	"testing"

	"pgregory.net/rapid"

	"ans/internal/ans/store"
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
)

// TestBijectionProperty drives random assignment sequences, some colliding on
// names and some on addresses, and checks after every step that the two
// directions mirror each other and that rejected calls changed nothing.
func TestBijectionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		st, err := New(ctx, self, owner, store.NewInMemory())
		if err != nil {
			t.Fatalf("new storage: %v", err)
		}

		model := map[string]domain.Address{}
		reverse := map[domain.Address]string{}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			name := rapid.SampledFrom([]string{"a", "b", "c", "d", "e"}).Draw(t, "name")
			addr := domain.DeriveAddress(alice, uint64(rapid.IntRange(0, 5).Draw(t, "addr")))

			err := st.AssignName(ctx, owner, addr, name)
			_, nameTaken := model[name]
			_, addrTaken := reverse[addr]
			switch {
			case nameTaken:
				if dErrors.CodeOf(err) != dErrors.CodeNameTaken {
					t.Fatalf("expected name_taken, got %v", err)
				}
			case addrTaken:
				if dErrors.CodeOf(err) != dErrors.CodeAddressAlreadyAssigned {
					t.Fatalf("expected address_already_assigned, got %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				model[name] = addr
				reverse[addr] = name
			}

			for n, a := range model {
				got, err := st.ResolveName(ctx, n)
				if err != nil || got != a {
					t.Fatalf("resolve %q = %v, %v; want %v", n, got, err, a)
				}
				back, err := st.ResolveAddress(ctx, a)
				if err != nil || back != n {
					t.Fatalf("reverse %v = %q, %v; want %q", a, back, err, n)
				}
			}
		}
	})
}

// TestNonOwnerNeverMutates checks that any caller other than the owner is
// rejected and leaves the mapping untouched.
func TestNonOwnerNeverMutates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		backend := store.NewInMemory()
		st, err := New(ctx, self, owner, backend)
		if err != nil {
			t.Fatalf("new storage: %v", err)
		}
		raw := rapid.SliceOfN(rapid.Byte(), domain.AddressLength, domain.AddressLength).Draw(t, "caller")
		caller := domain.BytesToAddress(raw)
		if caller == owner {
			t.Skip("drew the owner")
		}
		name := rapid.StringMatching(`[a-z0-9]{1,20}`).Draw(t, "name")

		err = st.AssignName(ctx, caller, alice, name)
		if dErrors.CodeOf(err) != dErrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if backend.Len() != 0 {
			t.Fatalf("mapping changed")
		}
	})
}
