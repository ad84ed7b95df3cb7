// Package models contains data structures for the blog's domain models.
package models

import (
	"time"
)

// User is the requester identity. Credentials are managed by the external
// auth subsystem; this service only reads identity and profile fields.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	// Email is only exposed through the edit-profile form.
	Email     string    `gorm:"uniqueIndex;size:254;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"-"`
}

// FullName returns "First Last", falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}
