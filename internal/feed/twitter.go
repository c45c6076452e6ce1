package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "coinsentinel/internal/errors"
	"coinsentinel/internal/models"
)

// createdAtLayout is the timestamp format used by the Twitter v1.1 API.
const createdAtLayout = "Mon Jan 02 15:04:05 -0700 2006"

// TwitterConfig holds configuration for the Twitter list client.
type TwitterConfig struct {
	BaseURL     string
	BearerToken string
	ListOwner   string // owner screen name of the monitored list
	Timeout     time.Duration
}

// TwitterClient fetches list timelines from the Twitter v1.1 REST API.
// It holds no mutable state and is safe for concurrent use.
type TwitterClient struct {
	baseURL    string
	token      string
	owner      string
	httpClient *http.Client
}

// NewTwitterClient creates a new Twitter list client.
func NewTwitterClient(cfg TwitterConfig) *TwitterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twitter.com/1.1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &TwitterClient{
		baseURL:    cfg.BaseURL,
		token:      cfg.BearerToken,
		owner:      cfg.ListOwner,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type tweetResponse struct {
	CreatedAt string `json:"created_at"`
	Text      string `json:"text"`
	User      struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
	Entities struct {
		URLs []struct {
			URL         string `json:"url"`
			ExpandedURL string `json:"expanded_url"`
		} `json:"urls"`
	} `json:"entities"`
}

// RecentItems returns the latest statuses on a list, newest first.
// Author screen names are lowercased before they reach the core; the
// rule engine's author comparison stays case-sensitive.
func (c *TwitterClient) RecentItems(ctx context.Context, listID string) ([]models.FeedItem, error) {
	params := url.Values{}
	params.Set("slug", listID)
	params.Set("owner_screen_name", c.owner)

	fullURL := fmt.Sprintf("%s/lists/statuses.json?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, apperrors.NewFeedError("recent_items", listID, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewFeedError("recent_items", listID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewFeedError("recent_items", listID, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewFeedError("recent_items", listID,
			fmt.Errorf("twitter api error (status %d): %s", resp.StatusCode, string(body)))
	}

	var raw []tweetResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.NewFeedError("recent_items", listID, err)
	}

	items := make([]models.FeedItem, 0, len(raw))
	for _, tw := range raw {
		postedAt, err := time.Parse(createdAtLayout, tw.CreatedAt)
		if err != nil {
			continue
		}
		var urls []string
		for _, u := range tw.Entities.URLs {
			if u.URL != "" {
				urls = append(urls, u.URL)
			}
		}
		items = append(items, models.FeedItem{
			Author:   strings.ToLower(tw.User.ScreenName),
			Text:     tw.Text,
			PostedAt: postedAt.UTC(),
			URLs:     urls,
		})
	}
	return items, nil
}
