package users

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/sahilm-dev/vidtube/models"
)

// MemoryRepository is an in-memory Repository used in tests. All mutations
// happen under a single mutex, which gives rotation the same
// compare-and-swap guarantee the Mongo conditional update provides.
type MemoryRepository struct {
	mu            sync.RWMutex
	users         map[bson.ObjectID]*models.User
	subscriptions []models.Subscription
	videos        map[bson.ObjectID]*models.Video
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  make(map[bson.ObjectID]*models.User),
		videos: make(map[bson.ObjectID]*models.Video),
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, ErrDuplicate
		}
	}

	now := time.Now().UTC()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.users[user.ID] = &stored
	return user, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) SetRefreshToken(_ context.Context, id bson.ObjectID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	t := token
	u.RefreshToken = &t
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) RotateRefreshToken(_ context.Context, id bson.ObjectID, oldToken, newToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrTokenMismatch
	}
	if u.RefreshToken == nil || *u.RefreshToken != oldToken {
		return ErrTokenMismatch
	}
	t := newToken
	u.RefreshToken = &t
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) ClearRefreshToken(_ context.Context, id bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		u.RefreshToken = nil
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *MemoryRepository) UpdatePassword(_ context.Context, id bson.ObjectID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.RefreshToken = nil
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) UpdateAccountDetails(_ context.Context, id bson.ObjectID, fullName, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if email != "" {
		for otherID, other := range r.users {
			if otherID != id && other.Email == email {
				return nil, ErrDuplicate
			}
		}
		u.Email = email
	}
	if fullName != "" {
		u.FullName = fullName
	}
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

func (r *MemoryRepository) UpdateAvatar(_ context.Context, id bson.ObjectID, avatarURL string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.Avatar = avatarURL
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

func (r *MemoryRepository) UpdateCoverImage(_ context.Context, id bson.ObjectID, coverImageURL string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u.CoverImage = coverImageURL
	u.UpdatedAt = time.Now().UTC()
	clone := *u
	return &clone, nil
}

func (r *MemoryRepository) ChannelProfile(_ context.Context, username string, viewerID bson.ObjectID) (*models.ChannelProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var channel *models.User
	for _, u := range r.users {
		if u.Username == username {
			channel = u
			break
		}
	}
	if channel == nil {
		return nil, ErrNotFound
	}

	profile := &models.ChannelProfile{
		ID:         channel.ID,
		Username:   channel.Username,
		FullName:   channel.FullName,
		Email:      channel.Email,
		Avatar:     channel.Avatar,
		CoverImage: channel.CoverImage,
		CreatedAt:  channel.CreatedAt,
	}
	for _, s := range r.subscriptions {
		if s.Channel == channel.ID {
			profile.SubscribersCount++
			if s.Subscriber == viewerID {
				profile.IsSubscribed = true
			}
		}
		if s.Subscriber == channel.ID {
			profile.ChannelsSubscribedToCount++
		}
	}
	return profile, nil
}

func (r *MemoryRepository) WatchHistory(_ context.Context, id bson.ObjectID) ([]models.WatchedVideo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	history := make([]models.WatchedVideo, 0, len(u.WatchHistory))
	for _, videoID := range u.WatchHistory {
		v, ok := r.videos[videoID]
		if !ok {
			continue
		}
		entry := models.WatchedVideo{
			ID:        v.ID,
			VideoFile: v.VideoFile,
			Thumbnail: v.Thumbnail,
			Title:     v.Title,
			Duration:  v.Duration,
			Views:     v.Views,
		}
		if owner, ok := r.users[v.Owner]; ok {
			entry.Owner = models.VideoOwner{
				ID:       owner.ID,
				Username: owner.Username,
				FullName: owner.FullName,
				Avatar:   owner.Avatar,
			}
		}
		history = append(history, entry)
	}
	return history, nil
}

// AddSubscription and AddVideo seed aggregation inputs in tests.

func (r *MemoryRepository) AddSubscription(sub models.Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions = append(r.subscriptions, sub)
}

func (r *MemoryRepository) AddVideo(video models.Video) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := video
	r.videos[video.ID] = &stored
}

func (r *MemoryRepository) AddToWatchHistory(id bson.ObjectID, videoID bson.ObjectID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.WatchHistory = append(u.WatchHistory, videoID)
	}
}
