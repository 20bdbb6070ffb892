// Package registry resolves package versions against the upstream
// registries: crates.io, the npm registry, and Packagist.
package registry

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// ErrOffline is returned for any lookup while offline mode is on.
var ErrOffline = errors.New("offline mode is enabled, refusing network access")

// ErrNotFound is returned when the registry does not know the package.
var ErrNotFound = errors.New("package not found in registry")

// Client queries package registries with retries.
type Client struct {
	// registry base URLs keyed by manager slug
	baseUrls   map[string]string
	rcmVersion string
	offline    bool
	HttpClient *retryablehttp.Client
}

// NewClient creates a registry client. baseUrls maps manager slugs to
// registry base URLs; lookups for unlisted managers fail.
func NewClient(baseUrls map[string]string, logger hclog.Logger, rcmVersion string, timeout time.Duration, retries int, offline bool) *Client {
	return &Client{
		baseUrls:   baseUrls,
		rcmVersion: rcmVersion,
		offline:    offline,
		HttpClient: &retryablehttp.Client{
			HTTPClient: &http.Client{
				Timeout: timeout,
			},
			RetryWaitMin: 2 * time.Second,
			RetryWaitMax: 10 * time.Second,
			RetryMax:     retries,
			CheckRetry:   retryablehttp.DefaultRetryPolicy,
			Backoff:      retryablehttp.DefaultBackoff,
			Logger:       logger,
		},
	}
}

// UserAgent identifies rcm to the registries.
func (c *Client) UserAgent() string {
	return fmt.Sprintf("rcm %v %v %v (%v)", c.rcmVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// LatestVersion resolves the newest published version of a package.
func (c *Client) LatestVersion(manager string, name string) (string, error) {
	if c.offline {
		return "", ErrOffline
	}
	base, ok := c.baseUrls[manager]
	if !ok {
		return "", errors.Errorf("no registry configured for %v", manager)
	}
	base = strings.TrimSuffix(base, "/")

	switch manager {
	case "cargo":
		return c.cratesLatest(base, name)
	case "npm":
		return c.npmLatest(base, name)
	case "composer":
		return c.packagistLatest(base, name)
	default:
		return "", errors.Errorf("%v packages cannot be resolved from a registry", manager)
	}
}

func (c *Client) getJSON(url string, out interface{}) error {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.UserAgent())
	req.Header.Set("Accept", "application/json")
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "querying %v", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("registry returned %v for %v", resp.StatusCode, url)
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *Client) cratesLatest(base string, name string) (string, error) {
	var payload struct {
		Crate struct {
			MaxStableVersion string `json:"max_stable_version"`
			MaxVersion       string `json:"max_version"`
		} `json:"crate"`
	}
	if err := c.getJSON(fmt.Sprintf("%v/api/v1/crates/%v", base, name), &payload); err != nil {
		return "", err
	}
	if payload.Crate.MaxStableVersion != "" {
		return payload.Crate.MaxStableVersion, nil
	}
	if payload.Crate.MaxVersion == "" {
		return "", ErrNotFound
	}
	return payload.Crate.MaxVersion, nil
}

func (c *Client) npmLatest(base string, name string) (string, error) {
	var payload struct {
		Version string `json:"version"`
	}
	if err := c.getJSON(fmt.Sprintf("%v/%v/latest", base, name), &payload); err != nil {
		return "", err
	}
	if payload.Version == "" {
		return "", ErrNotFound
	}
	return payload.Version, nil
}

func (c *Client) packagistLatest(base string, name string) (string, error) {
	var payload struct {
		Packages map[string][]struct {
			Version string `json:"version"`
		} `json:"packages"`
	}
	if err := c.getJSON(fmt.Sprintf("%v/p2/%v.json", base, name), &payload); err != nil {
		return "", err
	}
	versions, ok := payload.Packages[name]
	if !ok || len(versions) == 0 {
		return "", ErrNotFound
	}
	// Packagist orders entries newest first.
	return strings.TrimPrefix(versions[0].Version, "v"), nil
}
