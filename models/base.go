package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

// Base carries the document-style identity shared by every record.
// IDs are 24-char hex ObjectIDs so references look the same to clients
// regardless of which SQL driver backs the store.
type Base struct {
	ID        string    `json:"_id" gorm:"primaryKey;size:24"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a fresh ObjectID when none was set
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// NewID returns a new ObjectID in hex form
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsObjectID reports whether s is a well-formed ObjectID
func IsObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
