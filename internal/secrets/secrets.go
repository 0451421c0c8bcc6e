// Package secrets keeps API credentials in the OS keychain, with environment
// variables as a fallback.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app's secrets in the OS keychain.
	KeyringService = "daymark"
)

const (
	JSearchAPIKey       = "jsearch_api_key"
	AdzunaAppID         = "adzuna_app_id"
	AdzunaAppKey        = "adzuna_app_key"
	GoogleCalendarToken = "google_calendar_token"
)

var ErrUnknown = errors.New("unknown secret")

// envNames maps each secret to the environment variable read when the
// keychain has no value.
var envNames = map[string]string{
	JSearchAPIKey:       "RAPIDAPI_KEY",
	AdzunaAppID:         "ADZUNA_APP_ID",
	AdzunaAppKey:        "ADZUNA_APP_KEY",
	GoogleCalendarToken: "GOOGLE_CALENDAR_TOKEN",
}

// Known reports whether name is a secret the engine uses.
func Known(name string) bool {
	_, ok := envNames[name]
	return ok
}

// Names lists the known secrets in sorted order.
func Names() []string {
	out := make([]string, 0, len(envNames))
	for k := range envNames {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Get returns the keychain value for name, then its environment variable.
// An empty string means the secret is not set.
func Get(name string) string {
	env, ok := envNames[name]
	if !ok {
		return ""
	}
	v, err := keyring.Get(KeyringService, name)
	if err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(os.Getenv(env))
}

// Lookup returns a getter that reads name on every call, so a credential
// saved while the engine runs is picked up by the next fetch.
func Lookup(name string) func() string {
	return func() string { return Get(name) }
}

func Set(name, value string) error {
	if !Known(name) {
		return fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, name, strings.TrimSpace(value))
}

// Delete removes name from the keychain. Removing a secret that is not
// stored is not an error.
func Delete(name string) error {
	if !Known(name) {
		return fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	err := keyring.Delete(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Status reports which known secrets currently resolve to a value.
func Status() map[string]bool {
	out := make(map[string]bool, len(envNames))
	for name := range envNames {
		out[name] = Get(name) != ""
	}
	return out
}
