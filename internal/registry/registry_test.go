package registry

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

func testClient(t *testing.T, manager string, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(map[string]string{manager: server.URL}, hclog.NewNullLogger(), "test", 5*time.Second, 0, false)
}

func TestCratesLatest(t *testing.T) {
	client := testClient(t, "cargo", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/crates/serde", r.URL.Path)
		w.Write([]byte(`{"crate": {"max_stable_version": "1.0.188", "max_version": "1.0.189-rc1"}}`))
	}))

	version, err := client.LatestVersion("cargo", "serde")
	assert.NoError(t, err)
	assert.Equal(t, "1.0.188", version)
}

func TestNpmLatest(t *testing.T) {
	client := testClient(t, "npm", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/react/latest", r.URL.Path)
		w.Write([]byte(`{"name": "react", "version": "18.2.0"}`))
	}))

	version, err := client.LatestVersion("npm", "react")
	assert.NoError(t, err)
	assert.Equal(t, "18.2.0", version)
}

func TestPackagistLatest(t *testing.T) {
	client := testClient(t, "composer", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/p2/monolog/monolog.json", r.URL.Path)
		w.Write([]byte(`{"packages": {"monolog/monolog": [{"version": "v3.4.0"}, {"version": "v3.3.1"}]}}`))
	}))

	version, err := client.LatestVersion("composer", "monolog/monolog")
	assert.NoError(t, err)
	assert.Equal(t, "3.4.0", version)
}

func TestRetriesTransientErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"name": "react", "version": "18.2.0"}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(map[string]string{"npm": server.URL}, hclog.NewNullLogger(), "test", 5*time.Second, 3, false)
	client.HttpClient.RetryWaitMin = time.Millisecond
	client.HttpClient.RetryWaitMax = 5 * time.Millisecond

	version, err := client.LatestVersion("npm", "react")
	assert.NoError(t, err)
	assert.Equal(t, "18.2.0", version)
	assert.Equal(t, 3, attempts)
}

func TestNotFound(t *testing.T) {
	client := testClient(t, "npm", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := client.LatestVersion("npm", "no-such-package")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOfflineShortCircuits(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(server.Close)

	client := NewClient(map[string]string{"npm": server.URL}, hclog.NewNullLogger(), "test", time.Second, 0, true)
	_, err := client.LatestVersion("npm", "react")
	assert.ErrorIs(t, err, ErrOffline)
	assert.False(t, called)
}

func TestUnconfiguredManager(t *testing.T) {
	client := NewClient(map[string]string{}, hclog.NewNullLogger(), "test", time.Second, 0, false)
	_, err := client.LatestVersion("cargo", "serde")
	assert.Error(t, err)
}
