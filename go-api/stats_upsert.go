package main

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type inboxEvent int

const (
	eventReceived inboxEvent = iota
	eventAccepted
	eventDeleted
)

func (ev inboxEvent) column() (string, error) {
	switch ev {
	case eventReceived:
		return "received", nil
	case eventAccepted:
		return "accepted", nil
	case eventDeleted:
		return "deleted", nil
	}
	return "", fmt.Errorf("unknown inbox event %d", ev)
}

// upsertInboxStat bumps one counter on the user's row in a single statement,
// creating the row on first use. Concurrent callers never lose an increment.
func upsertInboxStat(db *gorm.DB, userKey string, ev inboxEvent) error {
	col, err := ev.column()
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	row := InboxStat{UserKey: userKey, CreatedAt: now, UpdatedAt: now}
	switch ev {
	case eventReceived:
		row.Received = 1
	case eventAccepted:
		row.Accepted = 1
	case eventDeleted:
		row.Deleted = 1
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			col:          gorm.Expr("inbox_stats."+col+" + ?", 1),
			"updated_at": now,
		}),
	}).Create(&row).Error
}
