package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Video struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	VideoFile   string        `bson:"videoFile" json:"videoFile"`
	Thumbnail   string        `bson:"thumbnail" json:"thumbnail"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Duration    float64       `bson:"duration" json:"duration"`
	Views       int64         `bson:"views" json:"views"`
	Owner       bson.ObjectID `bson:"owner" json:"owner"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
}

// WatchedVideo is a watch-history entry with the owner's public fields
// joined in.
type WatchedVideo struct {
	ID        bson.ObjectID `bson:"_id" json:"id"`
	VideoFile string        `bson:"videoFile" json:"videoFile"`
	Thumbnail string        `bson:"thumbnail" json:"thumbnail"`
	Title     string        `bson:"title" json:"title"`
	Duration  float64       `bson:"duration" json:"duration"`
	Views     int64         `bson:"views" json:"views"`
	Owner     VideoOwner    `bson:"owner" json:"owner"`
}

type VideoOwner struct {
	ID       bson.ObjectID `bson:"_id" json:"id"`
	Username string        `bson:"username" json:"username"`
	FullName string        `bson:"fullName" json:"fullName"`
	Avatar   string        `bson:"avatar" json:"avatar"`
}
