package handler

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mmcdole/gofeed"
	"github.com/redis/go-redis/v9"

	"github.com/ymoriya/panedash/internal/config"
)

// feedItem is the trimmed item shape the dashboard's RSS widget renders.
type feedItem struct {
	Title          string `json:"title,omitempty"`
	Link           string `json:"link,omitempty"`
	PubDate        string `json:"pubDate,omitempty"`
	IsoDate        string `json:"isoDate,omitempty"`
	ContentSnippet string `json:"contentSnippet,omitempty"`
	GUID           string `json:"guid,omitempty"`
}

type feedResponse struct {
	Title string     `json:"title"`
	Link  string     `json:"link"`
	Items []feedItem `json:"items"`
}

// RSSHandler proxies and parses remote RSS/Atom feeds.  Parsed feeds are
// cached in Redis keyed by URL so widgets polling the same feed do not
// hammer the upstream; with no Redis client every request goes upstream.
type RSSHandler struct {
	Cache   config.FeedCacheConfig
	RDB     *redis.Client
	Timeout time.Duration
}

func NewRSSHandler(cache config.FeedCacheConfig, rdb *redis.Client, timeout time.Duration) *RSSHandler {
	return &RSSHandler{Cache: cache, RDB: rdb, Timeout: timeout}
}

// GetFeed handles GET /api/rss?url=...  The URL scheme is checked before
// any network I/O; only http and https are allowed.
func (h *RSSHandler) GetFeed(c echo.Context) error {
	rawURL := c.QueryParam("url")
	if rawURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query parameter \"url\" is required"})
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid feed url protocol, only http and https are allowed"})
	}

	ctx := c.Request().Context()
	key := h.cacheKey(rawURL)

	if h.cacheEnabled() {
		if bs, err := h.RDB.Get(ctx, key).Bytes(); err == nil {
			var cached feedResponse
			if json.Unmarshal(bs, &cached) == nil {
				c.Response().Header().Set("X-Cache", "HIT")
				return c.JSON(http.StatusOK, cached)
			}
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()

	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(rawURL, fetchCtx)
	if err != nil {
		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
			return c.JSON(httpErr.StatusCode, echo.Map{"error": fmt.Sprintf("failed to fetch feed: %d", httpErr.StatusCode)})
		}
		log.Printf("rss: fetch/parse failed for %s: %v", rawURL, err)
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to fetch or parse rss feed"})
	}

	resp := feedResponse{Title: feed.Title, Link: feed.Link, Items: make([]feedItem, 0, len(feed.Items))}
	for _, it := range feed.Items {
		item := feedItem{
			Title:          it.Title,
			Link:           it.Link,
			PubDate:        it.Published,
			ContentSnippet: it.Description,
			GUID:           it.GUID,
		}
		if it.PublishedParsed != nil {
			item.IsoDate = it.PublishedParsed.UTC().Format(time.RFC3339)
		}
		resp.Items = append(resp.Items, item)
	}

	if h.cacheEnabled() {
		if bs, err := json.Marshal(resp); err == nil {
			if err := h.RDB.Set(ctx, key, bs, h.Cache.TTL).Err(); err != nil {
				log.Printf("rss: cache store failed for %s: %v", rawURL, err)
			}
		}
		c.Response().Header().Set("X-Cache", "MISS")
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RSSHandler) cacheEnabled() bool {
	return h.Cache.Enabled && h.RDB != nil
}

func (h *RSSHandler) cacheKey(feedURL string) string {
	sum := sha1.Sum([]byte(feedURL))
	return fmt.Sprintf("%s:%x", h.Cache.Prefix, sum[:])
}
