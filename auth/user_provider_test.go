package auth_test

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkd/bookmarkd/auth"
)

func TestUserProvider_RegisterIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("registers and stores a hashed password", func(t *testing.T) {
		store := newMemoryUsers()
		provider := auth.NewUserProvider(store)

		identity, err := provider.RegisterIdentity(ctx, "pepe@example.com", "s3cret")
		require.NoError(t, err)
		require.NotNil(t, identity)
		assert.Equal(t, "pepe@example.com", identity.Email())
		assert.NotEmpty(t, identity.ID())

		user, err := store.GetByEmail(ctx, "pepe@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "s3cret", user.PasswordHash, "password must never be stored in clear")
		assert.NoError(t, auth.ComparePasswordAndHash("s3cret", user.PasswordHash))
	})

	t.Run("derives a deterministic id from the email", func(t *testing.T) {
		first := newMemoryUsers()
		second := newMemoryUsers()

		providerA := auth.NewUserProvider(first)
		providerB := auth.NewUserProvider(second)

		a, err := providerA.RegisterIdentity(ctx, "same@example.com", "s3cret")
		require.NoError(t, err)

		b, err := providerB.RegisterIdentity(ctx, "same@example.com", "другой-пароль")
		require.NoError(t, err)

		assert.Equal(t, a.ID(), b.ID())
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		store := newMemoryUsers()
		provider := auth.NewUserProvider(store)

		_, err := provider.RegisterIdentity(ctx, "pepe@example.com", "s3cret")
		require.NoError(t, err)

		_, err = provider.RegisterIdentity(ctx, "pepe@example.com", "another")
		require.Error(t, err)
		assert.ErrorIs(t, err, auth.ErrCredentialTaken)
	})

	t.Run("rejects an empty password", func(t *testing.T) {
		provider := auth.NewUserProvider(newMemoryUsers())

		_, err := provider.RegisterIdentity(ctx, "pepe@example.com", "")
		assert.Error(t, err)
	})
}

func TestUserProvider_VerifyIdentity(t *testing.T) {
	ctx := context.Background()

	store := newMemoryUsers()
	provider := auth.NewUserProvider(store)

	_, err := provider.RegisterIdentity(ctx, "pepe@example.com", "s3cret")
	require.NoError(t, err)

	t.Run("returns the identity for valid credentials", func(t *testing.T) {
		identity, err := provider.VerifyIdentity(ctx, "pepe@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "pepe@example.com", identity.Email())
		assert.NotEmpty(t, identity.ID())
	})

	t.Run("corrupted stored hash surfaces as an internal error", func(t *testing.T) {
		broken := newMemoryUsers()
		_, err := broken.Register(ctx, &auth.User{
			Email:        "broken@example.com",
			PasswordHash: "this-is-not-a-bcrypt-hash",
		})
		require.NoError(t, err)

		_, err = auth.NewUserProvider(broken).VerifyIdentity(ctx, "broken@example.com", "whatever")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)

		var richErr *goerrors.Error
		require.True(t, goerrors.As(err, &richErr))
		assert.Equal(t, goerrors.CategoryInternal, richErr.Category)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		_, errUnknown := provider.VerifyIdentity(ctx, "nobody@example.com", "s3cret")
		require.Error(t, errUnknown)

		_, errWrongPass := provider.VerifyIdentity(ctx, "pepe@example.com", "wrong")
		require.Error(t, errWrongPass)

		assert.ErrorIs(t, errUnknown, auth.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPass, auth.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrongPass.Error())
	})
}

func TestUserProvider_FindIdentityByIdentifier(t *testing.T) {
	ctx := context.Background()

	store := newMemoryUsers()
	provider := auth.NewUserProvider(store)

	registered, err := provider.RegisterIdentity(ctx, "pepe@example.com", "s3cret")
	require.NoError(t, err)

	t.Run("resolves by id", func(t *testing.T) {
		identity, err := provider.FindIdentityByIdentifier(ctx, registered.ID())
		require.NoError(t, err)
		assert.Equal(t, registered.ID(), identity.ID())
	})

	t.Run("resolves by email", func(t *testing.T) {
		identity, err := provider.FindIdentityByIdentifier(ctx, "pepe@example.com")
		require.NoError(t, err)
		assert.Equal(t, "pepe@example.com", identity.Email())
	})

	t.Run("keeps not found intact", func(t *testing.T) {
		_, err := provider.FindIdentityByIdentifier(ctx, "nobody@example.com")
		require.Error(t, err)
		assert.True(t, goerrors.IsNotFound(err))
	})
}
