package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID           bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string          `bson:"username" json:"username"`
	Email        string          `bson:"email" json:"email"`
	FullName     string          `bson:"fullName" json:"fullName"`
	Avatar       string          `bson:"avatar" json:"avatar"`
	CoverImage   string          `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	PasswordHash string          `bson:"passwordHash" json:"-"` // never expose
	RefreshToken *string         `bson:"refreshToken,omitempty" json:"-"`
	WatchHistory []bson.ObjectID `bson:"watchHistory,omitempty" json:"-"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// ChannelProfile is the public view of a user's channel, with subscriber
// counts aggregated from the subscriptions collection.
type ChannelProfile struct {
	ID                        bson.ObjectID `bson:"_id" json:"id"`
	Username                  string        `bson:"username" json:"username"`
	FullName                  string        `bson:"fullName" json:"fullName"`
	Email                     string        `bson:"email" json:"email"`
	Avatar                    string        `bson:"avatar" json:"avatar"`
	CoverImage                string        `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	SubscribersCount          int64         `bson:"subscribersCount" json:"subscribersCount"`
	ChannelsSubscribedToCount int64         `bson:"channelsSubscribedToCount" json:"channelsSubscribedToCount"`
	IsSubscribed              bool          `bson:"isSubscribed" json:"isSubscribed"`
	CreatedAt                 time.Time     `bson:"createdAt" json:"createdAt"`
}
