package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talkboard/internal/domain"
)

func TestSavedEventService_SaveEvent(t *testing.T) {
	ctx := context.Background()
	creator := domain.GenerateUserID()
	event := domain.NewEvent("GopherCamp", "", "", "Berlin",
		time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		creator, testBaseURL, testNow)

	t.Run("first save writes, second is idempotent", func(t *testing.T) {
		user := domain.NewUser(domain.GenerateUserID(), "Ada")
		ur := newFakeUserRepo(user)
		ur.current = &user
		signIn := NewSignInService(ur, &fakeCredentialRepo{}, testLogger())
		svc := NewSavedEventService(newFakeEventRepo(event), ur, signIn, 5*time.Second)

		result, err := svc.SaveEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.AlreadySaved)
		assert.Equal(t, 1, ur.saveCalls)
		assert.Equal(t, 1, ur.current.SavedEventIDs.Len())

		result, err = svc.SaveEvent(ctx, event.ID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, result.AlreadySaved)
		// The repeat save skips the write and the set does not grow.
		assert.Equal(t, 1, ur.saveCalls)
		assert.Equal(t, 1, ur.current.SavedEventIDs.Len())
	})

	t.Run("event does not exist", func(t *testing.T) {
		user := domain.NewUser(domain.GenerateUserID(), "Ada")
		ur := newFakeUserRepo(user)
		ur.current = &user
		svc := NewSavedEventService(newFakeEventRepo(), ur, &stubSignIn{user: user}, 5*time.Second)

		_, err := svc.SaveEvent(ctx, domain.GenerateEventID())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, 0, ur.saveCalls)
	})

	t.Run("sign-in required", func(t *testing.T) {
		svc := NewSavedEventService(newFakeEventRepo(event), newFakeUserRepo(), &stubSignIn{err: domain.ErrNoSignInProvider}, 5*time.Second)

		_, err := svc.SaveEvent(ctx, event.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNoSignInProvider)
	})
}

func TestSavedEventService_RemoveSavedEvent(t *testing.T) {
	ctx := context.Background()
	creator := domain.GenerateUserID()
	event := domain.NewEvent("GopherCamp", "", "", "Berlin",
		time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		creator, testBaseURL, testNow)

	t.Run("removes a saved event", func(t *testing.T) {
		user := domain.NewUser(domain.GenerateUserID(), "Ada").SaveEvent(event.ID)
		ur := newFakeUserRepo(user)
		ur.current = &user
		svc := NewSavedEventService(newFakeEventRepo(event), ur, &stubSignIn{user: user}, 5*time.Second)

		require.NoError(t, svc.RemoveSavedEvent(ctx, event.ID))
		assert.Equal(t, 0, ur.current.SavedEventIDs.Len())
	})

	t.Run("removing an unsaved event still writes and succeeds", func(t *testing.T) {
		user := domain.NewUser(domain.GenerateUserID(), "Ada")
		ur := newFakeUserRepo(user)
		ur.current = &user
		svc := NewSavedEventService(newFakeEventRepo(event), ur, &stubSignIn{user: user}, 5*time.Second)

		require.NoError(t, svc.RemoveSavedEvent(ctx, event.ID))
		assert.Equal(t, 1, ur.saveCalls)
	})
}
