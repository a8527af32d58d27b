package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SearchHistory is a single search a user ran (MongoDB)
type SearchHistory struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID      string             `json:"user_id" bson:"user_id"`
	Query       string             `json:"query" bson:"query"`
	ResultCount int64              `json:"result_count" bson:"result_count"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
