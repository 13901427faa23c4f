package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh 24-char hex identifier. Both stores use ObjectID-shaped
// ids so data moves between them unchanged.
func NewID() string { return primitive.NewObjectID().Hex() }

func ValidID(id string) bool { return primitive.IsValidObjectID(id) }
