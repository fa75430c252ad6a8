// Package astuto is a minimal client for the Astuto feedback board REST API:
// listing the posts of a board and creating new ones.
package astuto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gitmirror/astuto-sync/internal/core/config"
	"github.com/gitmirror/astuto-sync/internal/retry"
)

// Client talks to one Astuto instance using an API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	retry   retry.Config
	log     zerolog.Logger
}

// APIError is a non-2xx response from the board API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("astuto api status=%d: %s", e.StatusCode, e.Message)
}

// IsAuth reports whether the error is a credential problem.
func (e *APIError) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsValidation reports whether the error is a rejected payload.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusBadRequest || e.StatusCode == http.StatusUnprocessableEntity
}

// NewClient creates a client from the astuto section of the config.
func NewClient(cfg config.Config, log zerolog.Logger) *Client {
	rc := retry.DefaultConfig()
	rc.MaxRetries = cfg.Sync.MaxRetries

	return &Client{
		baseURL: strings.TrimRight(cfg.Astuto.BaseURL, "/"),
		apiKey:  cfg.Astuto.APIKey,
		http:    &http.Client{Timeout: time.Duration(cfg.Sync.RequestTimeout)},
		retry:   rc,
		log:     log,
	}
}

// ListPosts fetches every post on a board, paging until an empty page.
func (c *Client) ListPosts(ctx context.Context, boardID int) ([]Post, error) {
	var all []Post
	for page := 1; ; page++ {
		u := fmt.Sprintf("%s/api/v1/boards/%d/posts?page=%d", c.baseURL, boardID, page)

		posts, err := retry.Do(ctx, c.retry, fmt.Sprintf("list posts page %d", page), isTransient, func() ([]Post, error) {
			var out []Post
			if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
				return nil, err
			}
			return out, nil
		})
		if err != nil {
			return nil, err
		}
		if len(posts) == 0 {
			return all, nil
		}
		all = append(all, posts...)
	}
}

// CreatePost submits a new post. Auth and validation errors come back as
// *APIError without retries; transient failures are retried.
func (c *Client) CreatePost(ctx context.Context, post NewPost) (*Post, error) {
	u := fmt.Sprintf("%s/api/v1/boards/%d/posts", c.baseURL, post.BoardID)

	return retry.Do(ctx, c.retry, fmt.Sprintf("create post %q", post.Title), isTransient, func() (*Post, error) {
		var out Post
		if err := c.do(ctx, http.MethodPost, u, post, &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// do performs a single JSON request. Retrying is the caller's concern.
func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	if c.baseURL == "" {
		return errors.New("astuto: empty base URL")
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(b))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("astuto: decoding response: %w", err)
		}
	}
	return nil
}

// isTransient reports whether err warrants a retry: 429 / 5xx responses and
// transport-level failures. Credential and payload problems do not.
func isTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}
