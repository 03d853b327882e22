package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.themoviedb.org/3"
	DefaultImageBase = "https://image.tmdb.org/t/p"
)

// Client is a thin TMDB v3 API client. It is constructed once at startup
// and shared; the embedded limiter keeps request bursts under TMDB's
// documented rate ceiling.
type Client struct {
	baseURL   string
	imageBase string
	apiKey    string
	http      *http.Client
	limiter   *rate.Limiter
}

func NewClient(baseURL, imageBase, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if imageBase == "" {
		imageBase = DefaultImageBase
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		imageBase: strings.TrimRight(imageBase, "/"),
		apiKey:    apiKey,
		http:      &http.Client{Timeout: 15 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(40), 40),
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tmdb %s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// imageURL prefixes a provider-relative image path with the size-bucketed
// base URL, or returns "" when the path is absent.
func (c *Client) imageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return c.imageBase + "/" + size + path
}
