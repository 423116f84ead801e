package users

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahilm-dev/vidtube/models"
)

func seedUser(t *testing.T, repo *MemoryRepository) *models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), &models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		FullName:     "Alice Doe",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func TestCreateRejectsDuplicates(t *testing.T) {
	repo := NewMemoryRepository()
	seedUser(t, repo)

	_, err := repo.Create(context.Background(), &models.User{
		Username: "alice",
		Email:    "other@example.com",
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.Create(context.Background(), &models.User{
		Username: "bob",
		Email:    "alice@example.com",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestRotateRefreshTokenExactMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo)

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "r1"))

	// wrong old value leaves the stored token untouched
	err := repo.RotateRefreshToken(ctx, user.ID, "bogus", "r2")
	assert.ErrorIs(t, err, ErrTokenMismatch)

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "r1", *got.RefreshToken)

	// matching old value swaps exactly once
	require.NoError(t, repo.RotateRefreshToken(ctx, user.ID, "r1", "r2"))
	err = repo.RotateRefreshToken(ctx, user.ID, "r1", "r3")
	assert.ErrorIs(t, err, ErrTokenMismatch)

	got, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "r2", *got.RefreshToken)
}

func TestRotateRefreshTokenConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo)

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "stale"))

	const racers = 16
	var wg sync.WaitGroup
	wins := make(chan int, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if repo.RotateRefreshToken(ctx, user.ID, "stale", "fresh") == nil {
				wins <- i
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count, "exactly one rotation may win")
}

func TestClearRefreshTokenIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo)

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "r1"))
	require.NoError(t, repo.ClearRefreshToken(ctx, user.ID))
	require.NoError(t, repo.ClearRefreshToken(ctx, user.ID))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)
}

func TestUpdatePasswordClearsRefreshToken(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	user := seedUser(t, repo)

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "r1"))
	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Nil(t, got.RefreshToken)
}

func TestChannelProfileCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	alice := seedUser(t, repo)

	bob, err := repo.Create(ctx, &models.User{
		Username: "bob",
		Email:    "bob@example.com",
	})
	require.NoError(t, err)

	repo.AddSubscription(models.Subscription{Subscriber: bob.ID, Channel: alice.ID})
	repo.AddSubscription(models.Subscription{Subscriber: alice.ID, Channel: bob.ID})

	profile, err := repo.ChannelProfile(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.SubscribersCount)
	assert.Equal(t, int64(1), profile.ChannelsSubscribedToCount)
	assert.True(t, profile.IsSubscribed)

	profile, err = repo.ChannelProfile(ctx, "bob", bob.ID)
	require.NoError(t, err)
	assert.False(t, profile.IsSubscribed)

	_, err = repo.ChannelProfile(ctx, "nobody", bob.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
