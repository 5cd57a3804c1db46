package main

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

type acceptMessagesReq struct {
	AcceptMessages *bool `json:"acceptMessages"`
}

// GET /api/accept-messages
func handleGetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	cu := currentUser(r)

	var u User
	err := DB.WithContext(r.Context()).Select("id", "is_accepting_messages").First(&u, "id = ?", cu.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error in getting message acceptance status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "isAcceptingMessage": u.IsAcceptingMessages})
}

// POST /api/accept-messages
// Responds with the stored value read back after the update so the client can reconcile.
func handleSetAcceptMessages(w http.ResponseWriter, r *http.Request) {
	cu := currentUser(r)

	var in acceptMessagesReq
	if err := decodeJSON(r, &in); err != nil || in.AcceptMessages == nil {
		errorJSON(w, http.StatusBadRequest, "acceptMessages (boolean) is required")
		return
	}

	var u User
	err := DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&User{}).Where("id = ?", cu.ID).Update("is_accepting_messages", *in.AcceptMessages)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Select("id", "is_accepting_messages").First(&u, "id = ?", cu.ID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "Failed to update user status to accept messages")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error in updating message acceptance status")
		return
	}

	msg := "Message acceptance disabled"
	if u.IsAcceptingMessages {
		msg = "Message acceptance enabled"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"message":            msg,
		"isAcceptingMessage": u.IsAcceptingMessages,
	})
}
