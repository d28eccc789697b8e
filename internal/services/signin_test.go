package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkboard/internal/domain"
)

// fakeProvider is a SignInProvider scripted to sign the user in, decline, or fail.
type fakeProvider struct {
	repo     *fakeUserRepo
	grant    bool
	err      error
	requests int
}

func (p *fakeProvider) Request(ctx context.Context) (bool, error) {
	p.requests++
	if p.err != nil {
		return false, p.err
	}
	if p.grant {
		user := domain.NewUser(domain.GenerateUserID(), "Ada")
		p.repo.byID[user.ID.String()] = user
		p.repo.current = &user
	}
	return p.grant, nil
}

func TestSignInService_RegisterProvider(t *testing.T) {
	svc := NewSignInService(newFakeUserRepo(), &fakeCredentialRepo{}, testLogger())

	require.NoError(t, svc.RegisterProvider(&fakeProvider{}))
	assert.ErrorIs(t, svc.RegisterProvider(&fakeProvider{}), domain.ErrProviderRegistered)

	// A slot frees up after unregistering.
	svc.UnregisterProvider()
	assert.NoError(t, svc.RegisterProvider(&fakeProvider{}))
}

func TestSignInService_RequireCurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("already signed in does not invoke the provider", func(t *testing.T) {
		user := domain.NewUser(domain.GenerateUserID(), "Ada")
		ur := newFakeUserRepo(user)
		ur.current = &user
		svc := NewSignInService(ur, &fakeCredentialRepo{}, testLogger())
		provider := &fakeProvider{repo: ur, grant: true}
		require.NoError(t, svc.RegisterProvider(provider))

		got, err := svc.RequireCurrentUser(ctx)
		require.NoError(t, err)
		assert.True(t, got.ID.Equal(user.ID))
		assert.Equal(t, 0, provider.requests)
	})

	t.Run("no provider registered", func(t *testing.T) {
		svc := NewSignInService(newFakeUserRepo(), &fakeCredentialRepo{}, testLogger())

		_, err := svc.RequireCurrentUser(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNoSignInProvider)
		assert.Equal(t, "no sign-in provider available", err.Error())
	})

	t.Run("provider grants the flow", func(t *testing.T) {
		ur := newFakeUserRepo()
		svc := NewSignInService(ur, &fakeCredentialRepo{}, testLogger())
		provider := &fakeProvider{repo: ur, grant: true}
		require.NoError(t, svc.RegisterProvider(provider))

		user, err := svc.RequireCurrentUser(ctx)
		require.NoError(t, err)
		assert.False(t, user.ID.IsZero())
		assert.Equal(t, 1, provider.requests)
	})

	t.Run("provider declines", func(t *testing.T) {
		ur := newFakeUserRepo()
		svc := NewSignInService(ur, &fakeCredentialRepo{}, testLogger())
		require.NoError(t, svc.RegisterProvider(&fakeProvider{repo: ur, grant: false}))

		_, err := svc.RequireCurrentUser(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSignInCancelled)
		assert.Equal(t, "sign-in was cancelled or failed", err.Error())
	})

	t.Run("provider fails", func(t *testing.T) {
		ur := newFakeUserRepo()
		svc := NewSignInService(ur, &fakeCredentialRepo{}, testLogger())
		require.NoError(t, svc.RegisterProvider(&fakeProvider{repo: ur, err: errors.New("boom")}))

		_, err := svc.RequireCurrentUser(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSignInCancelled)
	})

	t.Run("provider reports success but no user appears", func(t *testing.T) {
		ur := newFakeUserRepo()
		svc := NewSignInService(ur, &fakeCredentialRepo{}, testLogger())
		// grant flips the provider's return value without touching the repo.
		provider := &fakeProvider{repo: newFakeUserRepo(), grant: true}
		require.NoError(t, svc.RegisterProvider(provider))

		_, err := svc.RequireCurrentUser(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user after sign-in")
	})
}

func TestSignInService_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an account and stores the credential", func(t *testing.T) {
		ur := newFakeUserRepo()
		cr := &fakeCredentialRepo{}
		svc := NewSignInService(ur, cr, testLogger())

		credential, err := svc.SignIn(ctx)
		require.NoError(t, err)
		assert.Len(t, credential.Codes(), 4)
		require.NotNil(t, cr.stored)
		assert.Equal(t, credential.Codes(), cr.stored.Codes())
		assert.NotNil(t, ur.current)
	})

	t.Run("sign-in failure leaves no stored credential", func(t *testing.T) {
		ur := newFakeUserRepo()
		ur.signInErr = errors.New("backend down")
		cr := &fakeCredentialRepo{}
		svc := NewSignInService(ur, cr, testLogger())

		_, err := svc.SignIn(ctx)
		require.Error(t, err)
		assert.Nil(t, cr.stored)
	})
}

func TestSignInService_SignInWithCredential(t *testing.T) {
	ctx := context.Background()

	t.Run("valid codes", func(t *testing.T) {
		ur := newFakeUserRepo()
		cr := &fakeCredentialRepo{}
		svc := NewSignInService(ur, cr, testLogger())

		user, err := svc.SignInWithCredential(ctx, []string{"apple", "bravo", "crane", "delta"})
		require.NoError(t, err)
		assert.False(t, user.ID.IsZero())
		require.NotNil(t, cr.stored)
		assert.Equal(t, []string{"apple", "bravo", "crane", "delta"}, cr.stored.Codes())
	})

	t.Run("malformed codes never reach the repository", func(t *testing.T) {
		ur := newFakeUserRepo()
		ur.signInErr = errors.New("should not be called")
		svc := NewSignInService(ur, &fakeCredentialRepo{}, testLogger())

		_, err := svc.SignInWithCredential(ctx, []string{"apple", "bravo", "crane"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown credential", func(t *testing.T) {
		ur := newFakeUserRepo()
		ur.signInErr = domain.ErrNotFound
		svc := NewSignInService(ur, &fakeCredentialRepo{}, testLogger())

		_, err := svc.SignInWithCredential(ctx, []string{"apple", "bravo", "crane", "delta"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSignInService_DeleteAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes user and stored credential", func(t *testing.T) {
		ur := newFakeUserRepo()
		cr := &fakeCredentialRepo{}
		svc := NewSignInService(ur, cr, testLogger())

		_, err := svc.SignIn(ctx)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteAccount(ctx))
		assert.True(t, ur.deleted)
		assert.Nil(t, cr.stored)
	})

	t.Run("no stored credential is a silent no-op", func(t *testing.T) {
		ur := newFakeUserRepo()
		svc := NewSignInService(ur, &fakeCredentialRepo{}, testLogger())

		require.NoError(t, svc.DeleteAccount(ctx))
		assert.False(t, ur.deleted)
	})
}
