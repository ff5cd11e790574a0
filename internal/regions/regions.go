package regions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the public Indonesian administrative region API.
const DefaultBaseURL = "https://wilayah.id"

const fetchTimeout = 10 * time.Second

// Region is a province or regency.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type listResponse struct {
	Data []Region `json:"data"`
}

// Client looks up provinces and regencies. Successful lookups are cached for
// the lifetime of the client and concurrent lookups of the same key share one
// request.
type Client struct {
	baseURL string
	http    *http.Client

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string][]Region
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		cache:   make(map[string][]Region),
	}
}

func (c *Client) Provinces(ctx context.Context) ([]Region, error) {
	return c.lookup(ctx, "/api/provinces.json")
}

// Regencies lists the regencies of a province. An empty code yields an empty
// list without a request.
func (c *Client) Regencies(ctx context.Context, provinceCode string) ([]Region, error) {
	provinceCode = strings.TrimSpace(provinceCode)
	if provinceCode == "" {
		return []Region{}, nil
	}
	return c.lookup(ctx, "/api/regencies/"+url.PathEscape(provinceCode)+".json")
}

func (c *Client) lookup(ctx context.Context, path string) ([]Region, error) {
	c.mu.RLock()
	cached, ok := c.cache[path]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	ch := c.group.DoChan(path, func() (any, error) {
		// Shared by every waiter, so one caller giving up must not cancel it.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		regions, err := c.fetch(fetchCtx, path)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.cache[path] = regions
		c.mu.Unlock()
		return regions, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]Region), nil
	}
}

func (c *Client) fetch(ctx context.Context, path string) ([]Region, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("region lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("region lookup %s returned %d", path, resp.StatusCode)
	}

	var decoded listResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode regions: %w", err)
	}
	if decoded.Data == nil {
		decoded.Data = []Region{}
	}
	return decoded.Data, nil
}
