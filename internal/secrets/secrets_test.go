package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestSetGetDelete(t *testing.T) {
	keyring.MockInit()
	t.Setenv("RAPIDAPI_KEY", "")

	assert.Equal(t, "", Get(JSearchAPIKey))
	require.NoError(t, Set(JSearchAPIKey, "  abc  "))
	assert.Equal(t, "abc", Get(JSearchAPIKey))
	assert.True(t, Status()[JSearchAPIKey])

	require.NoError(t, Delete(JSearchAPIKey))
	assert.Equal(t, "", Get(JSearchAPIKey))
	require.NoError(t, Delete(JSearchAPIKey))
}

func TestEnvFallback(t *testing.T) {
	keyring.MockInit()
	t.Setenv("ADZUNA_APP_ID", "from-env")

	get := Lookup(AdzunaAppID)
	assert.Equal(t, "from-env", get())

	require.NoError(t, Set(AdzunaAppID, "from-keyring"))
	assert.Equal(t, "from-keyring", get())
}

func TestUnknownAndEmpty(t *testing.T) {
	keyring.MockInit()
	assert.ErrorIs(t, Set("imap_password", "x"), ErrUnknown)
	assert.ErrorIs(t, Delete("imap_password"), ErrUnknown)
	assert.Error(t, Set(AdzunaAppKey, " "))
	assert.Equal(t, "", Get("imap_password"))
	assert.False(t, Known("imap_password"))
	assert.Equal(t, []string{AdzunaAppID, AdzunaAppKey, GoogleCalendarToken, JSearchAPIKey}, Names())
}
