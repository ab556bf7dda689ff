// Package models contains data structures for the application's domain models.
package models

import "time"

// User is the identity principal owned by the auth subsystem.
// Posts, comments and follow edges reference it.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"email,omitempty"`
	Password  string    `gorm:"not null" json:"-"`
	IsAdmin   bool      `gorm:"default:false" json:"is_admin,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns a copy of the user safe to embed in feeds shown to other users.
func (u User) Public() User {
	u.Email = ""
	u.IsAdmin = false
	return u
}
