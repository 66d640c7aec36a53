package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Image is a stored wallpaper image.
type Image struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	URL       string             `bson:"url" json:"url"`
	PublicID  string             `bson:"publicId" json:"publicId"`
	Width     int                `bson:"width" json:"width"`
	Height    int                `bson:"height" json:"height"`
	Format    string             `bson:"format" json:"format"`
	Bytes     int64              `bson:"bytes" json:"bytes"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
