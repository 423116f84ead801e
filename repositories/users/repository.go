// Package users persists user accounts and the single stored refresh token
// that backs session rotation.
package users

import (
	"context"
	"errors"

	"github.com/sahilm-dev/vidtube/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("username or email already taken")

	// ErrTokenMismatch is returned by RotateRefreshToken when the stored
	// refresh token no longer equals the presented one: either it was
	// already rotated, or it was cleared by logout / password change.
	ErrTokenMismatch = errors.New("stored refresh token mismatch")
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// SetRefreshToken unconditionally overwrites the stored refresh token,
	// evicting any previous session.
	SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error

	// RotateRefreshToken replaces the stored refresh token with newToken
	// only if the stored value still equals oldToken. The conditional
	// update is atomic, so two concurrent rotations racing on the same
	// stale token cannot both win.
	RotateRefreshToken(ctx context.Context, id bson.ObjectID, oldToken, newToken string) error

	// ClearRefreshToken removes the stored refresh token. Idempotent.
	ClearRefreshToken(ctx context.Context, id bson.ObjectID) error

	// UpdatePassword stores a new password hash and clears the stored
	// refresh token, forcing re-authentication on other sessions.
	UpdatePassword(ctx context.Context, id bson.ObjectID, passwordHash string) error

	UpdateAccountDetails(ctx context.Context, id bson.ObjectID, fullName, email string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id bson.ObjectID, avatarURL string) (*models.User, error)
	UpdateCoverImage(ctx context.Context, id bson.ObjectID, coverImageURL string) (*models.User, error)

	ChannelProfile(ctx context.Context, username string, viewerID bson.ObjectID) (*models.ChannelProfile, error)
	WatchHistory(ctx context.Context, id bson.ObjectID) ([]models.WatchedVideo, error)
}
