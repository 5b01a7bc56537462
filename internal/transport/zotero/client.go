// Package zotero is a read-only client for the Zotero Web API v3 and the
// compatible local API served by the Zotero desktop app.
package zotero

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/zotsearch/internal/domain"
	"github.com/kailas-cloud/zotsearch/internal/domain/item"
)

// Endpoints.
const (
	DefaultBaseURL = "https://api.zotero.org"
	LocalBaseURL   = "http://localhost:23119/api"

	apiVersion = "3"
	// localUserID addresses the library of the running desktop app.
	localUserID = "0"
	// maxErrorBody bounds how much of an error response ends up in the error text.
	maxErrorBody = 512
)

// Config holds client settings.
type Config struct {
	LibraryID   string
	LibraryType string // user, group
	APIKey      string
	Local       bool
	BaseURL     string // overrides the endpoint, mostly for tests
	Timeout     time.Duration
}

// Client reads items from one Zotero library.
type Client struct {
	http   *http.Client
	base   string // {base}/{users|groups}/{id}
	apiKey string
	logger *zap.Logger
}

// New creates a client for the configured library.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base := cfg.BaseURL
	libID := cfg.LibraryID
	libType := cfg.LibraryType
	if cfg.Local {
		if base == "" {
			base = LocalBaseURL
		}
		libID = localUserID
		libType = "user"
	}
	if base == "" {
		base = DefaultBaseURL
	}
	if libID == "" {
		return nil, errors.New("library id is required")
	}

	var segment string
	switch libType {
	case "", "user":
		segment = "users"
	case "group":
		segment = "groups"
	default:
		return nil, fmt.Errorf("unknown library type %q", libType)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		http:   &http.Client{Timeout: timeout},
		base:   strings.TrimRight(base, "/") + "/" + segment + "/" + url.PathEscape(libID),
		apiKey: cfg.APIKey,
		logger: logger,
	}, nil
}

// FetchPage returns up to limit items starting at offset, in library order.
// Attachments and notes are included; filtering is the caller's concern.
func (c *Client) FetchPage(ctx context.Context, offset, limit int) ([]item.Item, error) {
	q := url.Values{}
	q.Set("start", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("format", "json")

	var raw []envelope
	if err := c.get(ctx, "/items?"+q.Encode(), &raw); err != nil {
		return nil, fmt.Errorf("fetch items [%d:%d]: %w", offset, offset+limit, err)
	}

	items := make([]item.Item, len(raw))
	for i := range raw {
		items[i] = raw[i].toItem()
	}
	c.logger.Debug("Fetched item page",
		zap.Int("offset", offset),
		zap.Int("limit", limit),
		zap.Int("count", len(items)),
	)
	return items, nil
}

// Item returns a single item. Unknown keys yield domain.ErrItemNotFound.
func (c *Client) Item(ctx context.Context, key string) (item.Item, error) {
	var raw envelope
	if err := c.get(ctx, "/items/"+url.PathEscape(key)+"?format=json", &raw); err != nil {
		return item.Item{}, fmt.Errorf("fetch item %s: %w", key, err)
	}
	return raw.toItem(), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", apiVersion)
	if c.apiKey != "" {
		req.Header.Set("Zotero-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRemoteLibrary, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if backoff := resp.Header.Get("Backoff"); backoff != "" {
		c.logger.Warn("Zotero API asked clients to back off", zap.String("seconds", backoff))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrRemoteLibrary, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return domain.ErrItemNotFound
	case http.StatusTooManyRequests:
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			return fmt.Errorf("%w: retry after %ss", domain.ErrRateLimited, ra)
		}
		return domain.ErrRateLimited
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrRemoteLibrary, resp.StatusCode, msg)
	}
}
