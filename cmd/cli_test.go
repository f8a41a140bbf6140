package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func newInfoServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/backend/users/info":
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"daily_budget_usd":"100","daily_spent_usd":"25","monthly_budget_usd":0,"monthly_spent_usd":0}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestVersionCommandPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1.0.0")
}

func TestStatusWithoutCredentialShowsNoCredential(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Status: no credential")
	assert.Contains(t, stdout, "Requests: -")
	assert.Contains(t, stdout, "no data")
}

func TestStatusFetchesAndRendersUsage(t *testing.T) {
	server := newInfoServer(t)
	t.Setenv("PACKYBAR_BASE_URL", server.URL)

	home := t.TempDir()
	_, _, err := executeCLI(t, home, "config", "set", "token", "sk-test")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "D 25% | M 0%")
	assert.Contains(t, stdout, "Status: ok")
	assert.Contains(t, stdout, "Daily: 25.00/100.00")
}

func TestStatusShowsFetchSpinnerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"daily_budget_usd":100,"daily_spent_usd":25,"monthly_budget_usd":0,"monthly_spent_usd":0}`)
	}))
	t.Cleanup(server.Close)
	t.Setenv("PACKYBAR_BASE_URL", server.URL)

	home := t.TempDir()
	_, _, err := executeCLI(t, home, "config", "set", "token", "sk-test")
	require.NoError(t, err)

	_, stderr, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Fetching usage")
}

func TestStatusJSONOutput(t *testing.T) {
	server := newInfoServer(t)
	t.Setenv("PACKYBAR_BASE_URL", server.URL)

	home := t.TempDir()
	_, _, err := executeCLI(t, home, "config", "set", "token", "sk-test")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "status", "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"Title\": \"D 25% | M 0%\"")
	assert.Contains(t, stdout, "\"DailyPercent\": 25")
}

func TestStatusCachedSkipsFetch(t *testing.T) {
	server := newInfoServer(t)
	t.Setenv("PACKYBAR_BASE_URL", server.URL)

	home := t.TempDir()
	_, _, err := executeCLI(t, home, "config", "set", "token", "sk-test")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "refresh")
	require.NoError(t, err)

	server.Close()

	stdout, _, err := executeCLI(t, home, "status", "--cached")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Daily: 25.00/100.00")
}

func TestRefreshPrintsTitle(t *testing.T) {
	server := newInfoServer(t)
	t.Setenv("PACKYBAR_BASE_URL", server.URL)

	home := t.TempDir()
	_, _, err := executeCLI(t, home, "config", "set", "token", "sk-test")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "refresh")
	require.NoError(t, err)
	assert.Contains(t, stdout, "D 25% | M 0%")
}

func TestConfigSetGetRoundTrip(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "config", "set", "language", "zh")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "config", "get", "language")
	require.NoError(t, err)
	assert.Contains(t, stdout, "zh")
}

func TestConfigSetRefusesUnreadableConfig(t *testing.T) {
	// A directory at the config path makes the read fail without the file
	// being missing; set must not replace it with defaults.
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".packybar", "config.json"), 0o700))

	_, _, err := executeCLI(t, home, "config", "set", "token", "sk-test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load settings")
}

func TestConfigSetRejectsUnknownKey(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "config", "set", "mystery_key", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown setting")
}

func TestConfigSetRejectsBadEnumValue(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "config", "set", "ring_color_mode", "plaid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not one of")
}

func TestConfigPathPointsIntoHome(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "config", "path")
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(home, ".packybar", "config.json"))
}

func TestUpdateCheckReportsUpToDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v0.9.0","html_url":"https://example.com/v0.9.0","assets":[]}`)
	}))
	t.Cleanup(server.Close)
	t.Setenv("PACKYBAR_FEED_URL", server.URL)

	stdout, _, err := executeCLI(t, t.TempDir(), "update", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Already up to date.")
}

func TestUpdateCheckReportsNewerRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v1.1.0","html_url":"https://example.com/v1.1.0","assets":[]}`)
	}))
	t.Cleanup(server.Close)
	t.Setenv("PACKYBAR_FEED_URL", server.URL)

	stdout, _, err := executeCLI(t, t.TempDir(), "update", "check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Update available: v1.1.0")
	assert.Contains(t, stdout, "https://example.com/v1.1.0")
}

func TestDashboardOpensAccountURL(t *testing.T) {
	t.Setenv("PACKYBAR_OPEN_CMD", "true")

	stdout, _, err := executeCLI(t, t.TempDir(), "dashboard")
	require.NoError(t, err)
	assert.Contains(t, stdout, "https://www.packycode.com/dashboard")
}

func TestRunOnceWritesStateAndRing(t *testing.T) {
	server := newInfoServer(t)
	t.Setenv("PACKYBAR_BASE_URL", server.URL)

	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"tag_name":"v0.9.0","html_url":"","assets":[]}`)
	}))
	t.Cleanup(feed.Close)
	t.Setenv("PACKYBAR_FEED_URL", feed.URL)

	home := t.TempDir()
	_, _, err := executeCLI(t, home, "config", "set", "token", "sk-test")
	require.NoError(t, err)
	_, _, err = executeCLI(t, home, "config", "set", "ring_enabled", "true")
	require.NoError(t, err)

	_, _, err = executeCLI(t, home, "run", "--once")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(home, ".packybar", "state.toml"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(home, ".packybar", "ring.png"))
	require.NoError(t, err)
}

func TestUnknownCommandFails(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "limit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
