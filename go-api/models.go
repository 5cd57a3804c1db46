package main

import "time"

// MessageRecord is one anonymous message in a user's inbox.
type MessageRecord struct {
	ID         string     `gorm:"primaryKey;type:text"`
	UserID     string     `gorm:"index:idx_messages_user_created,priority:1;type:text;not null"`
	Title      string     `gorm:"size:100;not null"`
	Content    string     `gorm:"type:text;not null"`
	AcceptedAt *time.Time
	CreatedAt  time.Time `gorm:"index:idx_messages_user_created,priority:2;autoCreateTime"`
}

func (MessageRecord) TableName() string { return "messages" }

// InboxStat holds running counters for one user's inbox.
type InboxStat struct {
	ID        uint      `gorm:"primaryKey"`
	UserKey   string    `gorm:"uniqueIndex;type:text;not null"`
	Received  int       `gorm:"not null;default:0"`
	Accepted  int       `gorm:"not null;default:0"`
	Deleted   int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
