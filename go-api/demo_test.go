package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoSignUpClonesSourceInbox(t *testing.T) {
	h := setupServer(t)
	signUp(t, h, "source")
	for _, c := range []string{"first seeded note", "second seeded note", "third seeded note"} {
		require.Equal(t, http.StatusCreated, sendMessage(t, h, "source", "", c).Code)
	}
	var src User
	require.NoError(t, DB.First(&src, "username = ?", "source").Error)

	t.Setenv("DEMO_MODE", "true")
	t.Setenv("DEMO_SOURCE_USER_ID", src.ID)
	t.Setenv("DEMO_CLONE_LIMIT", "2")
	c := signUp(t, h, "visitor")

	msgs := listMessages(t, h, c)
	require.Len(t, msgs, 2)

	w := doJSON(t, h, http.MethodGet, "/api/message-stats", nil, c)
	assert.Equal(t, 2.0, decodeBody(t, w)["stats"].(map[string]any)["received"])

	// source inbox untouched
	var n int64
	require.NoError(t, DB.Model(&MessageRecord{}).Where("user_id = ?", src.ID).Count(&n).Error)
	assert.EqualValues(t, 3, n)
}

func TestDemoSignUpSurvivesMissingSource(t *testing.T) {
	h := setupServer(t)
	t.Setenv("DEMO_MODE", "true")
	t.Setenv("DEMO_SOURCE_USER_ID", "")

	c := signUp(t, h, "lonely")
	assert.Empty(t, listMessages(t, h, c))
}
