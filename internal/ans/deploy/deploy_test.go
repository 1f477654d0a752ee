package deploy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ans/internal/ans/store"
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
	"ans/pkg/testutil"
)

var (
	deployer = domain.MustParseAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	owner    = deployer
	acct1    = domain.MustParseAddress("0xFFcf8FDEE72ac11b5c542428B35EEF5769C409f0")
)

func deployed(t *testing.T, backend *store.InMemory) *Deployment {
	t.Helper()
	d, err := Setup(context.Background(), Config{Deployer: deployer, Owner: owner}, backend)
	require.NoError(t, err)
	return d
}

func TestAddressesAreDeterministic(t *testing.T) {
	r1, s1 := Addresses(deployer)
	r2, s2 := Addresses(deployer)
	assert.Equal(t, r1, r2)
	assert.Equal(t, s1, s2)
	assert.NotEqual(t, r1, s1)

	r3, _ := Addresses(acct1)
	assert.NotEqual(t, r1, r3)
}

func TestSetupRejectsZeroDeployer(t *testing.T) {
	_, err := Setup(context.Background(), Config{Owner: owner}, store.NewInMemory())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAddress))
}

func TestSetupRejectsZeroOwner(t *testing.T) {
	_, err := Setup(context.Background(), Config{Deployer: deployer}, store.NewInMemory())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidAddress))
}

func TestSetupIsRestartSafe(t *testing.T) {
	ctx := context.Background()
	backend := store.NewInMemory()
	first := deployed(t, backend)
	require.NoError(t, first.Registry.AssignName(ctx, acct1, "persisted"))

	second := deployed(t, backend)
	assert.Equal(t, first.RegistryAddress, second.RegistryAddress)
	assert.Equal(t, first.StorageAddress, second.StorageAddress)

	addr, err := second.Registry.ResolveName(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, acct1, addr)
}

func TestScenarios(t *testing.T) {
	ctx := context.Background()

	testutil.Given(t, "a fresh deployment owned by O", func(t *testing.T) {
		d := deployed(t, store.NewInMemory())

		testutil.Then(t, "storage is owned by the registry and resolves nothing (A)", func(t *testing.T) {
			storageOwner, err := d.Storage.Owner(ctx)
			require.NoError(t, err)
			assert.Equal(t, d.RegistryAddress, storageOwner)

			addr, err := d.Registry.ResolveName(ctx, "abc")
			require.NoError(t, err)
			assert.True(t, addr.IsZero())
		})

		testutil.When(t, "O assigns an uppercase name (B)", func(t *testing.T) {
			require.NoError(t, d.Registry.AssignName(ctx, owner, "ABCDEFGH"))

			testutil.Then(t, "the lowercase name resolves to O", func(t *testing.T) {
				addr, err := d.Registry.ResolveName(ctx, "abcdefgh")
				require.NoError(t, err)
				assert.Equal(t, owner, addr)
			})
		})

		testutil.When(t, "malformed names are assigned (C)", func(t *testing.T) {
			cases := map[string]dErrors.Code{
				"":                      dErrors.CodeTooShort,
				"123456789012345678901": dErrors.CodeTooLong,
				"0x1234567890":          dErrors.CodeHexStringNotAllowed,
				"abc!":                  dErrors.CodeInvalidCharacters,
			}
			for name, code := range cases {
				err := d.Registry.AssignName(ctx, acct1, name)
				assert.Equal(t, code, dErrors.CodeOf(err), "name %q", name)
			}
		})
	})

	testutil.Given(t, "O transferred storage ownership to A1 (D)", func(t *testing.T) {
		d := deployed(t, store.NewInMemory())
		require.NoError(t, d.Registry.TransferStorageOwnership(ctx, owner, acct1))

		testutil.Then(t, "assignments through the registry are unauthorized", func(t *testing.T) {
			err := d.Registry.AssignName(ctx, owner, "helloworld")
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		})

		testutil.Then(t, "A1 can write to storage directly", func(t *testing.T) {
			require.NoError(t, d.Storage.AssignName(ctx, acct1, owner, "direct"))
			addr, err := d.Registry.ResolveName(ctx, "direct")
			require.NoError(t, err)
			assert.Equal(t, owner, addr)
		})
	})

	testutil.Given(t, "O renounced storage ownership (E)", func(t *testing.T) {
		d := deployed(t, store.NewInMemory())
		require.NoError(t, d.Registry.RenounceStorageOwnership(ctx, owner))

		testutil.Then(t, "storage owner is the zero address", func(t *testing.T) {
			got, err := d.Registry.StorageOwner(ctx)
			require.NoError(t, err)
			assert.True(t, got.IsZero())
		})

		testutil.Then(t, "every mutation fails permanently", func(t *testing.T) {
			for _, err := range []error{
				d.Registry.AssignName(ctx, owner, "helloworld"),
				d.Registry.TransferStorageOwnership(ctx, owner, acct1),
				d.Registry.RenounceStorageOwnership(ctx, owner),
				d.Storage.AssignName(ctx, d.RegistryAddress, owner, "direct"),
				d.Storage.AssignName(ctx, domain.ZeroAddress, owner, "direct"),
			} {
				assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), "got %v", err)
			}
		})
	})
}
