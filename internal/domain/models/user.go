package models

import (
	"errors"
	"time"
)

// User is a registered operator allowed to reach the inventory API.
type User struct {
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"password_hash"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

var (
	// ErrUserNotFound indicates no user is registered under the username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists indicates the username is already taken.
	ErrUserExists = errors.New("user already exists")
)
