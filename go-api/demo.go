package main

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

func isDemoEnabled() bool {
	return strings.ToLower(os.Getenv("DEMO_MODE")) == "true"
}

func demoSourceUserID() (string, error) {
	id := strings.TrimSpace(os.Getenv("DEMO_SOURCE_USER_ID"))
	if id == "" {
		return "", errors.New("DEMO_SOURCE_USER_ID not set")
	}
	return id, nil
}

func demoCloneLimit() int {
	if v := strings.TrimSpace(os.Getenv("DEMO_CLONE_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 25
}

// cloneDemoInbox copies recent messages from a source user into the new demo user,
// then recomputes InboxStat so the dashboard counters match exactly.
func cloneDemoInbox(dstUserID string, tx *gorm.DB) error {
	srcID, err := demoSourceUserID()
	if err != nil {
		return err
	}

	// 1) Copy recent messages
	var src []MessageRecord
	if err := tx.
		Where("user_id = ?", srcID).
		Order("created_at DESC").
		Limit(demoCloneLimit()).
		Find(&src).Error; err != nil {
		return err
	}

	if len(src) > 0 {
		clones := make([]MessageRecord, 0, len(src))
		for _, m := range src {
			nm := m
			nm.ID = newID()
			nm.UserID = dstUserID
			clones = append(clones, nm)
		}
		if err := tx.Create(&clones).Error; err != nil {
			return err
		}
	}

	// 2) Recompute stats from the cloned messages (delete existing stats for this user first)
	if err := tx.Where("user_key = ?", dstUserID).Delete(&InboxStat{}).Error; err != nil {
		return err
	}
	return recomputeInboxStat(dstUserID, tx)
}

// recomputeInboxStat scans MessageRecord for a user and writes its InboxStat row.
// Deletions are not recoverable from the messages table, so Deleted starts at zero.
func recomputeInboxStat(userID string, tx *gorm.DB) error {
	var msgs []MessageRecord
	if err := tx.Where("user_id = ?", userID).Find(&msgs).Error; err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	s := InboxStat{UserKey: userID, UpdatedAt: time.Now().UTC()}
	for _, m := range msgs {
		s.Received++
		if m.AcceptedAt != nil {
			s.Accepted++
		}
	}
	return tx.Create(&s).Error
}
