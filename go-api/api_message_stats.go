package main

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

type statRow struct {
	Received int `json:"received"`
	Accepted int `json:"accepted"`
	Deleted  int `json:"deleted"`
}

// GET /api/message-stats
func handleMessageStats(w http.ResponseWriter, r *http.Request) {
	cu := currentUser(r)

	var s InboxStat
	err := DB.WithContext(r.Context()).Where("user_key = ?", cu.ID).First(&s).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats": statRow{Received: s.Received, Accepted: s.Accepted, Deleted: s.Deleted},
	})
}
