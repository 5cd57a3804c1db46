package main

import "time"

// User is the persisted account record.
// auth.go (handlers) convert this to a lightweight DTO for the client.
type User struct {
	ID                  string `gorm:"primaryKey;type:text"` // uuid string
	Username            string `gorm:"uniqueIndex;size:20;not null"`
	Email               string `gorm:"uniqueIndex;size:320;not null"`
	DisplayName         string `gorm:"size:120"`
	PasswordHash        string `gorm:"size:255;not null"`
	IsAcceptingMessages bool   `gorm:"not null;default:true"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// TableName allows explicit control (optional; defaults to "users").
func (User) TableName() string { return "users" }

// name is what the session exposes as user.name.
func (u User) name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
