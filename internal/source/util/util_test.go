package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanTextAndLocation(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a  b\n\tc "))
	assert.Equal(t, "Austin, TX", NormalizeLocation("Location: Austin , TX, austin"))
	assert.Equal(t, "", NormalizeLocation("   "))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Build things in Go.", StripHTML("<p>Build <b>things</b> in Go.</p>"))
	assert.Equal(t, "plain", StripHTML(" plain "))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 10))
	assert.Equal(t, "", Truncate("hi", 0))
}

func TestCanonicalURL(t *testing.T) {
	got := CanonicalURL("HTTPS://Jobs.Example.com/a?utm_source=x&b=2&a=1#frag")
	assert.Equal(t, "https://jobs.example.com/a?a=1&b=2", got)
}

func TestHashIDStableAndCaseInsensitive(t *testing.T) {
	assert.Equal(t, HashID("Acme", "SWE"), HashID("acme", "swe"))
	assert.NotEqual(t, HashID("acme", "swe"), HashID("acme", "sre"))
}

func TestGetJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	var out map[string]any
	_, err := GetJSON(context.Background(), srv.Client(), NewHostLimiter(100, 1), srv.URL, nil, &out)
	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}

func TestThousands(t *testing.T) {
	assert.Equal(t, "0", Thousands(0))
	assert.Equal(t, "999", Thousands(999))
	assert.Equal(t, "1,000", Thousands(1000))
	assert.Equal(t, "120,000", Thousands(120000))
	assert.Equal(t, "-1,234,567", Thousands(-1234567))
}

func TestBudget(t *testing.T) {
	b := NewBudget(2, 30*time.Second)
	t0 := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	assert.True(t, b.Take(t0))
	assert.False(t, b.Take(t0.Add(10*time.Second)), "inside min interval")
	assert.True(t, b.Take(t0.Add(31*time.Second)))
	assert.False(t, b.Take(t0.Add(2*time.Minute)), "daily cap")

	left, reset := b.Remaining(t0.Add(time.Hour))
	assert.Equal(t, 0, left)
	assert.Equal(t, t0.Add(24*time.Hour), reset)

	assert.True(t, b.Take(t0.Add(25*time.Hour)), "window rolled")
}
