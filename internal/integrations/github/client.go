// Package github reads issues from a public GitHub repository, paging through
// the REST issue listing while honoring rate-limit responses.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/gitmirror/astuto-sync/internal/core/config"
	"github.com/gitmirror/astuto-sync/internal/core/mirror"
	"github.com/gitmirror/astuto-sync/internal/retry"
)

// rateLimitFallbackWait is used when a rate-limit response carries no usable
// reset time.
const rateLimitFallbackWait = 60 * time.Second

// Client wraps the GitHub API client for one source repository.
type Client struct {
	client *github.Client

	owner string
	repo  string
	state string

	pageSize          int
	maxRateLimitWaits int
	retry             retry.Config
	log               zerolog.Logger
}

// NewClient creates a reader for the configured source repository. Without a
// token the client is unauthenticated, which is fine for public repositories
// but gets a much smaller rate-limit budget.
func NewClient(ctx context.Context, cfg config.Config, log zerolog.Logger) *Client {
	var tc *http.Client
	if cfg.Source.Token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.Source.Token},
		)
		tc = oauth2.NewClient(ctx, ts)
	} else {
		tc = &http.Client{}
	}
	tc.Timeout = time.Duration(cfg.Sync.RequestTimeout)

	rc := retry.DefaultConfig()
	rc.MaxRetries = cfg.Sync.MaxRetries

	return &Client{
		client:            github.NewClient(tc),
		owner:             cfg.Source.Owner,
		repo:              cfg.Source.Repo,
		state:             cfg.Source.State,
		pageSize:          cfg.Sync.PageSize,
		maxRateLimitWaits: cfg.Sync.MaxRateLimitWaits,
		retry:             rc,
		log:               log,
	}
}

// WithBaseURL points the client at a different API endpoint, e.g. a GitHub
// Enterprise instance. A trailing slash is appended if missing.
func (c *Client) WithBaseURL(raw string) (*Client, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	c.client.BaseURL = u
	return c, nil
}

// ForEachIssue walks the repository's issues in listing order, invoking fn for
// each one. Pagination stops when a page comes back shorter than the page
// size. Pull requests show up in the issues listing and are not mirrored.
func (c *Client) ForEachIssue(ctx context.Context, fn func(mirror.Issue) error) error {
	opt := &github.IssueListByRepoOptions{
		State: c.state,
		ListOptions: github.ListOptions{
			Page:    1,
			PerPage: c.pageSize,
		},
	}

	for {
		issues, err := c.listPage(ctx, opt)
		if err != nil {
			return err
		}

		for _, issue := range issues {
			if issue.IsPullRequest() {
				continue
			}
			if err := fn(normalize(issue)); err != nil {
				return err
			}
		}

		if len(issues) < opt.PerPage {
			return nil
		}
		opt.Page++
	}
}

// listPage fetches one page, waiting out rate limits a bounded number of
// times and retrying transient failures.
func (c *Client) listPage(ctx context.Context, opt *github.IssueListByRepoOptions) ([]*github.Issue, error) {
	waits := 0
	for {
		operation := fmt.Sprintf("list issues page %d", opt.Page)
		issues, err := retry.Do(ctx, c.retry, operation, isTransient, func() ([]*github.Issue, error) {
			out, _, err := c.client.Issues.ListByRepo(ctx, c.owner, c.repo, opt)
			return out, err
		})
		if err == nil {
			return issues, nil
		}

		wait, ok := rateLimitWait(err)
		if !ok {
			return nil, &FetchError{Page: opt.Page, Err: err}
		}

		if waits >= c.maxRateLimitWaits {
			return nil, &RateLimitExceededError{Page: opt.Page, Err: err}
		}
		waits++

		c.log.Warn().
			Int("page", opt.Page).
			Dur("wait", wait).
			Int("attempt", waits).
			Msg("rate limited, waiting for reset")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// normalize maps an API issue onto the transient record the publisher consumes.
func normalize(issue *github.Issue) mirror.Issue {
	rec := mirror.Issue{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		URL:    issue.GetHTMLURL(),
		State:  issue.GetState(),
	}
	if ts := issue.GetCreatedAt(); !ts.IsZero() {
		rec.CreatedAt = ts.Time
	}
	return rec
}

// rateLimitWait returns how long to wait before retrying after a rate-limit
// response, from the reset time or retry-after the API supplied.
func rateLimitWait(err error) (time.Duration, bool) {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		if rle.Rate.Reset.IsZero() {
			return rateLimitFallbackWait, true
		}
		wait := time.Until(rle.Rate.Reset.Time)
		if wait < 0 {
			wait = 0
		}
		return wait, true
	}

	var arle *github.AbuseRateLimitError
	if errors.As(err, &arle) {
		if arle.RetryAfter != nil {
			return *arle.RetryAfter, true
		}
		return rateLimitFallbackWait, true
	}

	return 0, false
}

// isTransient reports whether err warrants a same-page retry. Rate-limit
// errors are excluded here: they get the reset-based wait in listPage instead
// of exponential backoff.
func isTransient(err error) bool {
	var rle *github.RateLimitError
	var arle *github.AbuseRateLimitError
	if errors.As(err, &rle) || errors.As(err, &arle) {
		return false
	}

	var ger *github.ErrorResponse
	if errors.As(err, &ger) {
		return ger.Response != nil && ger.Response.StatusCode >= 500
	}

	// Transport-level failure (timeout, connection reset).
	return true
}
