package mirror

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gitmirror/astuto-sync/internal/integrations/astuto"
)

// BoardClient is the slice of the destination API the publisher needs.
type BoardClient interface {
	ListPosts(ctx context.Context, boardID int) ([]astuto.Post, error)
	CreatePost(ctx context.Context, post astuto.NewPost) (*astuto.Post, error)
}

// Publisher turns issue records into board posts, skipping issues whose
// marker already appears on the board.
type Publisher struct {
	board       BoardClient
	boardID     int
	createDelay time.Duration
	dryRun      bool
	log         zerolog.Logger

	// markers holds the back-link of every known post; read-only after
	// LoadExisting apart from additions for posts created this run.
	markers map[string]struct{}
}

// NewPublisher creates a publisher for one board.
func NewPublisher(board BoardClient, boardID int, createDelay time.Duration, log zerolog.Logger) *Publisher {
	return &Publisher{
		board:       board,
		boardID:     boardID,
		createDelay: createDelay,
		log:         log,
		markers:     make(map[string]struct{}),
	}
}

// WithDryRun makes Publish log creations without calling the API.
func (p *Publisher) WithDryRun(dryRun bool) *Publisher {
	p.dryRun = dryRun
	return p
}

// LoadExisting pulls the board's posts once and builds the marker lookup set.
// Returns the number of posts that carry a marker.
func (p *Publisher) LoadExisting(ctx context.Context) (int, error) {
	posts, err := p.board.ListPosts(ctx, p.boardID)
	if err != nil {
		return 0, fmt.Errorf("listing existing posts: %w", err)
	}

	for _, post := range posts {
		if url, ok := ExtractMarker(post.Description); ok {
			p.markers[Marker(url)] = struct{}{}
		}
	}
	return len(p.markers), nil
}

// Publish mirrors one issue. Re-running a sync never duplicates: an issue
// whose marker is already known is skipped.
func (p *Publisher) Publish(ctx context.Context, issue Issue) (Outcome, error) {
	marker := Marker(issue.URL)
	if _, ok := p.markers[marker]; ok {
		return OutcomeSkipped, nil
	}

	post := astuto.NewPost{
		Title:       issue.Title,
		Description: description(issue),
		BoardID:     p.boardID,
		Status:      postStatus(issue.State),
	}

	if p.dryRun {
		p.log.Info().Int("issue", issue.Number).Str("title", issue.Title).Msg("dry-run: would create post")
	} else {
		if _, err := p.board.CreatePost(ctx, post); err != nil {
			return OutcomeFailed, err
		}
	}

	p.markers[marker] = struct{}{}

	if p.createDelay > 0 && !p.dryRun {
		select {
		case <-ctx.Done():
			return OutcomeCreated, nil
		case <-time.After(p.createDelay):
		}
	}
	return OutcomeCreated, nil
}

// description builds the post body: the issue body followed by an origin
// footer whose last line is the dedup marker.
func description(issue Issue) string {
	body := strings.TrimSpace(issue.Body)
	if body == "" {
		body = "No description provided"
	}

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "Originally from GitHub Issue #%d\n", issue.Number)
	fmt.Fprintf(&b, "Status: %s\n", issue.State)
	if !issue.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Created at: %s\n", issue.CreatedAt.UTC().Format(time.RFC3339))
	}
	b.WriteString(Marker(issue.URL))
	return b.String()
}

// postStatus maps the issue state onto a board status.
func postStatus(state string) string {
	if state == "closed" {
		return "closed"
	}
	return "under_review"
}
