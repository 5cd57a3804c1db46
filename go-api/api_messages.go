package main

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

/* ===================== Public JSON (API) ====================== */

// Message is the wire shape of an inbox entry; _id mirrors the document-store id the pages key on.
type Message struct {
	ID         string     `json:"_id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"createdAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}

type sendMessageReq struct {
	Username string `json:"username"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

const (
	defaultMessageTitle = "Anonymous message"
	minContentLen       = 10
	maxContentLen       = 300
	maxTitleLen         = 100
)

/* ===================== Helpers ====================== */

func toPublic(m MessageRecord) Message {
	return Message{
		ID:         m.ID,
		Title:      m.Title,
		Content:    m.Content,
		CreatedAt:  m.CreatedAt.UTC(),
		AcceptedAt: m.AcceptedAt,
	}
}

func validateMessage(in *sendMessageReq) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	if n := utf8.RuneCountInString(in.Content); n < minContentLen || n > maxContentLen {
		return errors.New("content must be between 10 and 300 characters")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return errors.New("title must be at most 100 characters")
	}
	if in.Title == "" {
		in.Title = defaultMessageTitle
	}
	return nil
}

/* ===================== HTTP: owner inbox ====================== */

// GET /api/get-messages
func handleGetMessages(w http.ResponseWriter, r *http.Request) {
	cu := currentUser(r)

	var recs []MessageRecord
	if err := DB.WithContext(r.Context()).
		Where("user_id = ?", cu.ID).
		Order("created_at DESC, id DESC").
		Find(&recs).Error; err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}
	out := make([]Message, 0, len(recs))
	for _, rc := range recs {
		out = append(out, toPublic(rc))
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "messages": out})
}

// DELETE /api/delete-message/{messageId}
func handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	cu := currentUser(r)
	id := strings.TrimSpace(chi.URLParam(r, "messageId"))

	var gone bool
	err := DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, cu.ID).Delete(&MessageRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			gone = true
			return nil
		}
		return upsertInboxStat(tx, cu.ID, eventDeleted)
	})
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error deleting message")
		return
	}
	if gone {
		errorJSON(w, http.StatusNotFound, "Message not found or already deleted")
		return
	}
	messagesDeleted.Inc()
	okJSON(w, "Message deleted")
}

// POST /api/accept-message/{messageId}
// Records that the owner accepted one specific anonymous message; repeat calls keep the first timestamp.
func handleAcceptMessage(w http.ResponseWriter, r *http.Request) {
	cu := currentUser(r)
	id := strings.TrimSpace(chi.URLParam(r, "messageId"))

	var m MessageRecord
	err := DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, cu.ID).First(&m).Error; err != nil {
			return err
		}
		if m.AcceptedAt != nil {
			return nil
		}
		now := time.Now().UTC()
		if err := tx.Model(&m).Update("accepted_at", now).Error; err != nil {
			return err
		}
		m.AcceptedAt = &now
		return upsertInboxStat(tx, cu.ID, eventAccepted)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "Message not found")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Message accepted",
		"acceptedAt": m.AcceptedAt,
	})
}

/* ===================== HTTP: public intake ====================== */

// POST /api/send-message
// Anonymous visitors post here; the owner's accept-messages flag gates delivery.
func handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var in sendMessageReq
	if err := decodeJSON(r, &in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validateMessage(&in); err != nil {
		messagesRejected.WithLabelValues("invalid").Inc()
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	var u User
	err := DB.WithContext(r.Context()).Where("username = ?", strings.TrimSpace(in.Username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		messagesRejected.WithLabelValues("unknown_user").Inc()
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}
	if !u.IsAcceptingMessages {
		messagesRejected.WithLabelValues("not_accepting").Inc()
		errorJSON(w, http.StatusForbidden, "User is not accepting messages")
		return
	}

	rec := MessageRecord{
		ID:      newID(),
		UserID:  u.ID,
		Title:   in.Title,
		Content: in.Content,
	}
	err = DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return upsertInboxStat(tx, u.ID, eventReceived)
	})
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Error sending message")
		return
	}
	messagesReceived.Inc()
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Message sent successfully"})
}

// GET /api/u/{username}
func handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))

	var u User
	err := DB.WithContext(r.Context()).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errorJSON(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		errorJSON(w, http.StatusInternalServerError, "db error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"username":            u.Username,
		"isAcceptingMessages": u.IsAcceptingMessages,
	})
}
