package inbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileURL(t *testing.T) {
	got, err := ProfileURL("https://app.example.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/u/alice", got)

	got, err = ProfileURL("http://localhost:3000/dashboard?tab=1", "bob_2")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/u/bob_2", got)

	got, err = ProfileURL("https://app.example.com", "a b")
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/u/a%20b", got)

	_, err = ProfileURL("app.example.com", "alice")
	assert.Error(t, err)
}

func TestSplitSuggestions(t *testing.T) {
	got := SplitSuggestions("What's your hobby?||'Favorite movie?' || \"Dream trip?\"||  ")
	assert.Equal(t, []string{"What's your hobby?", "Favorite movie?", "Dream trip?"}, got)
	assert.Empty(t, SplitSuggestions(""))
}
