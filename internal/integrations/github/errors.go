package github

import "fmt"

// RateLimitExceededError means the rate-limit wait budget ran out while
// fetching a page. It is fatal for the rest of the run.
type RateLimitExceededError struct {
	Page int
	Err  error
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("rate limit exceeded fetching page %d: %v", e.Page, e.Err)
}

func (e *RateLimitExceededError) Unwrap() error { return e.Err }

// FetchError means a page fetch kept failing after retries. It is fatal for
// the rest of the run.
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching issues page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
