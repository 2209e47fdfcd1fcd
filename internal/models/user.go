package models

import "time"

// User is the locally synced copy of an identity-provider account.
// ExternalID holds the provider subject id; ID is assigned by the store.
type User struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	ExternalID string    `bson:"externalId" json:"externalId"`
	Email      string    `bson:"email" json:"email"`
	Username   string    `bson:"username" json:"username"`
	FirstName  string    `bson:"firstName" json:"firstName"`
	LastName   string    `bson:"lastName" json:"lastName"`
	PhotoURL   string    `bson:"photoUrl" json:"photoUrl"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserUpdate carries the mutable fields written on a provider update event.
// The identifier is never part of an update.
type UserUpdate struct {
	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Username  string `bson:"username" json:"username"`
	PhotoURL  string `bson:"photoUrl" json:"photoUrl"`
}
