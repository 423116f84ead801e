package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/sahilm-dev/vidtube/models"
)

// MongoRepository stores users in MongoDB. The refresh token lives on the
// user document itself, so rotation is a single conditional update.
type MongoRepository struct {
	users         *mongo.Collection
	subscriptions *mongo.Collection
	videos        *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		users:         db.Collection("users"),
		subscriptions: db.Collection("subscriptions"),
		videos:        db.Collection("videos"),
	}
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := time.Now().UTC()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.users.InsertOne(ctx, user); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return user, nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *MongoRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	count, err := r.users.CountDocuments(ctx, bson.M{
		"$or": bson.A{
			bson.M{"username": username},
			bson.M{"email": email},
		},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *MongoRepository) SetRefreshToken(ctx context.Context, id bson.ObjectID, token string) error {
	res, err := r.users.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"refreshToken": token,
			"updatedAt":    time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) RotateRefreshToken(ctx context.Context, id bson.ObjectID, oldToken, newToken string) error {
	// Compare-and-swap: the filter matches only while the stored token
	// still equals the presented one, so a concurrent rotation cannot
	// double-spend the same token.
	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": id, "refreshToken": oldToken},
		bson.M{"$set": bson.M{
			"refreshToken": newToken,
			"updatedAt":    time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrTokenMismatch
	}
	return nil
}

func (r *MongoRepository) ClearRefreshToken(ctx context.Context, id bson.ObjectID) error {
	_, err := r.users.UpdateByID(ctx, id, bson.M{
		"$unset": bson.M{"refreshToken": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	})
	return err
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, id bson.ObjectID, passwordHash string) error {
	res, err := r.users.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"passwordHash": passwordHash,
			"updatedAt":    time.Now().UTC(),
		},
		"$unset": bson.M{"refreshToken": ""},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) UpdateAccountDetails(ctx context.Context, id bson.ObjectID, fullName, email string) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if fullName != "" {
		set["fullName"] = fullName
	}
	if email != "" {
		set["email"] = email
	}

	res, err := r.users.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MongoRepository) UpdateAvatar(ctx context.Context, id bson.ObjectID, avatarURL string) (*models.User, error) {
	return r.setField(ctx, id, "avatar", avatarURL)
}

func (r *MongoRepository) UpdateCoverImage(ctx context.Context, id bson.ObjectID, coverImageURL string) (*models.User, error) {
	return r.setField(ctx, id, "coverImage", coverImageURL)
}

func (r *MongoRepository) setField(ctx context.Context, id bson.ObjectID, field, value string) (*models.User, error) {
	res, err := r.users.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			field:       value,
			"updatedAt": time.Now().UTC(),
		},
	})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *MongoRepository) ChannelProfile(ctx context.Context, username string, viewerID bson.ObjectID) (*models.ChannelProfile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": username}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "subscriptions",
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscribersCount":          bson.M{"$size": "$subscribers"},
			"channelsSubscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed": bson.M{
				"$in": bson.A{viewerID, "$subscribers.subscriber"},
			},
		}}},
		{{Key: "$project", Value: bson.M{
			"username":                  1,
			"fullName":                  1,
			"email":                     1,
			"avatar":                    1,
			"coverImage":                1,
			"subscribersCount":          1,
			"channelsSubscribedToCount": 1,
			"isSubscribed":              1,
			"createdAt":                 1,
		}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.ChannelProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return &profiles[0], nil
}

func (r *MongoRepository) WatchHistory(ctx context.Context, id bson.ObjectID) ([]models.WatchedVideo, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "videos",
			"localField":   "watchHistory",
			"foreignField": "_id",
			"as":           "watchHistory",
			"pipeline": bson.A{
				bson.M{"$lookup": bson.M{
					"from":         "users",
					"localField":   "owner",
					"foreignField": "_id",
					"as":           "owner",
					"pipeline": bson.A{
						bson.M{"$project": bson.M{
							"username": 1,
							"fullName": 1,
							"avatar":   1,
						}},
					},
				}},
				bson.M{"$addFields": bson.M{
					"owner": bson.M{"$first": "$owner"},
				}},
			},
		}}},
		{{Key: "$project", Value: bson.M{"watchHistory": 1}}},
	}

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		WatchHistory []models.WatchedVideo `bson:"watchHistory"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return results[0].WatchHistory, nil
}

func isDuplicateKey(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	return strings.Contains(err.Error(), "E11000 duplicate key error")
}
