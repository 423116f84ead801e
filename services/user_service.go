// Package services holds the business logic between the HTTP controllers
// and the repositories. UserService implements the session lifecycle:
// register, login, refresh-token rotation, logout, and password change.
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/sahilm-dev/vidtube/auth"
	"github.com/sahilm-dev/vidtube/dto"
	"github.com/sahilm-dev/vidtube/models"
	"github.com/sahilm-dev/vidtube/repositories/users"
	"github.com/sahilm-dev/vidtube/utils"
)

// MediaStorage uploads user media to an object store and returns a public
// URL. Satisfied by utils.GCSStorage and utils.R2Storage.
type MediaStorage interface {
	UploadImage(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error)
	DeleteImageByURL(ctx context.Context, rawURL string) error
}

// TokenPair bundles a short-lived access token and a long-lived refresh
// token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type UserService struct {
	repo   users.Repository
	tokens *auth.TokenManager
	media  MediaStorage
}

func NewUserService(repo users.Repository, tokens *auth.TokenManager, media MediaStorage) *UserService {
	return &UserService{repo: repo, tokens: tokens, media: media}
}

// AccessTTL and RefreshTTL expose the token lifetimes for cookie expiry.
func (s *UserService) AccessTTL() time.Duration  { return s.tokens.AccessTTL() }
func (s *UserService) RefreshTTL() time.Duration { return s.tokens.RefreshTTL() }

// Register creates a new account. The avatar is required, the cover image
// optional; both are uploaded before the user document is written, matching
// the registration order of the HTTP contract (a failed upload must not
// leave a half-created account).
func (s *UserService) Register(ctx context.Context, input dto.RegisterUserDTO, avatar, coverImage *multipart.FileHeader) (*models.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := utils.NormalizeUsername(input.Username)

	if fullName == "" || email == "" || username == "" || strings.TrimSpace(input.Password) == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if avatar == nil {
		return nil, fmt.Errorf("%w: avatar file is required", ErrValidation)
	}

	exists, err := s.repo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("%w: checking existing users", ErrInternal)
	}
	if exists {
		return nil, fmt.Errorf("%w: user with email or username already exists", ErrConflict)
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternal)
	}

	avatarURL, err := s.media.UploadImage(ctx, "avatars", avatar)
	if err != nil {
		return nil, fmt.Errorf("%w: avatar upload failed", ErrInternal)
	}

	var coverImageURL string
	if coverImage != nil {
		coverImageURL, err = s.media.UploadImage(ctx, "covers", coverImage)
		if err != nil {
			return nil, fmt.Errorf("%w: cover image upload failed", ErrInternal)
		}
	}

	user, err := s.repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		Avatar:       avatarURL,
		CoverImage:   coverImageURL,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, users.ErrDuplicate) {
			return nil, fmt.Errorf("%w: user with email or username already exists", ErrConflict)
		}
		return nil, fmt.Errorf("%w: creating user", ErrInternal)
	}
	return user, nil
}

// Login verifies the credentials and, on success, issues a fresh token pair
// and stores the refresh token on the user record. Any previously stored
// refresh token is overwritten, which evicts the prior session.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	username = utils.NormalizeUsername(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		return nil, nil, fmt.Errorf("%w: looking up user", ErrInternal)
	}

	if err := utils.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, nil, fmt.Errorf("%w: invalid user credentials", ErrUnauthorized)
	}

	pair, err := s.issueTokenPair(user.ID.Hex())
	if err != nil {
		return nil, nil, err
	}
	if err := s.repo.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, nil, fmt.Errorf("%w: storing refresh token", ErrInternal)
	}
	return user, pair, nil
}

// Refresh rotates the token pair. The incoming refresh token must carry a
// valid signature, be unexpired, and exactly equal the token stored on the
// user record; the stored value is then swapped for the new token in one
// conditional update, so a superseded token can never be replayed.
func (s *UserService) Refresh(ctx context.Context, incoming string) (*TokenPair, error) {
	if strings.TrimSpace(incoming) == "" {
		return nil, fmt.Errorf("%w: no token supplied", ErrUnauthorized)
	}

	claims, err := s.tokens.VerifyRefreshToken(incoming)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}

	userID, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: looking up user", ErrInternal)
	}

	pair, err := s.issueTokenPair(user.ID.Hex())
	if err != nil {
		return nil, err
	}

	if err := s.repo.RotateRefreshToken(ctx, user.ID, incoming, pair.RefreshToken); err != nil {
		if errors.Is(err, users.ErrTokenMismatch) {
			return nil, fmt.Errorf("%w: token expired or already used", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: rotating refresh token", ErrInternal)
	}
	return pair, nil
}

// Logout clears the stored refresh token. Logging out twice leaves the same
// end state.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", ErrUnauthorized)
	}
	if err := s.repo.ClearRefreshToken(ctx, id); err != nil {
		return fmt.Errorf("%w: clearing refresh token", ErrInternal)
	}
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
// The stored refresh token is cleared alongside, forcing re-authentication
// on any other session.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if strings.TrimSpace(currentPassword) == "" || strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: current and new password are required", ErrValidation)
	}

	user, err := s.userByHexID(ctx, userID)
	if err != nil {
		return err
	}

	if err := utils.CheckPassword(user.PasswordHash, currentPassword); err != nil {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: failed to hash password", ErrInternal)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("%w: updating password", ErrInternal)
	}
	return nil
}

func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userByHexID(ctx, userID)
}

func (s *UserService) UpdateAccount(ctx context.Context, userID string, input dto.UpdateAccountDTO) (*models.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fullName == "" && email == "" {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrUnauthorized)
	}

	user, err := s.repo.UpdateAccountDetails(ctx, id, fullName, email)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrNotFound):
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		case errors.Is(err, users.ErrDuplicate):
			return nil, fmt.Errorf("%w: email already taken", ErrConflict)
		}
		return nil, fmt.Errorf("%w: updating account", ErrInternal)
	}
	return user, nil
}

// UpdateAvatar uploads the new image first and deletes the old object only
// after the record points at the new URL.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (*models.User, error) {
	return s.updateImage(ctx, userID, file, "avatars", func(u *models.User) string { return u.Avatar }, s.repo.UpdateAvatar)
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID string, file *multipart.FileHeader) (*models.User, error) {
	return s.updateImage(ctx, userID, file, "covers", func(u *models.User) string { return u.CoverImage }, s.repo.UpdateCoverImage)
}

func (s *UserService) ChannelProfile(ctx context.Context, channelUsername, viewerID string) (*models.ChannelProfile, error) {
	username := utils.NormalizeUsername(channelUsername)
	if username == "" {
		return nil, fmt.Errorf("%w: username is missing", ErrValidation)
	}

	viewer, err := bson.ObjectIDFromHex(viewerID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrUnauthorized)
	}

	profile, err := s.repo.ChannelProfile(ctx, username, viewer)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("%w: channel does not exist", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading channel profile", ErrInternal)
	}
	return profile, nil
}

func (s *UserService) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrUnauthorized)
	}

	history, err := s.repo.WatchHistory(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading watch history", ErrInternal)
	}
	return history, nil
}

func (s *UserService) issueTokenPair(userID string) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: signing access token", ErrInternal)
	}
	refresh, err := s.tokens.GenerateRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: signing refresh token", ErrInternal)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) userByHexID(ctx context.Context, userID string) (*models.User, error) {
	id, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", ErrUnauthorized)
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: looking up user", ErrInternal)
	}
	return user, nil
}

func (s *UserService) updateImage(
	ctx context.Context,
	userID string,
	file *multipart.FileHeader,
	folder string,
	oldURL func(*models.User) string,
	update func(context.Context, bson.ObjectID, string) (*models.User, error),
) (*models.User, error) {
	if file == nil {
		return nil, fmt.Errorf("%w: image file is required", ErrValidation)
	}

	user, err := s.userByHexID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.media.UploadImage(ctx, folder, file)
	if err != nil {
		return nil, fmt.Errorf("%w: image upload failed", ErrInternal)
	}

	updated, err := update(ctx, user.ID, url)
	if err != nil {
		return nil, fmt.Errorf("%w: updating image", ErrInternal)
	}

	// best effort cleanup of the replaced object
	if old := oldURL(user); old != "" {
		_ = s.media.DeleteImageByURL(ctx, old)
	}
	return updated, nil
}
