package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitmirror/astuto-sync/internal/core/config"
	"github.com/gitmirror/astuto-sync/internal/core/mirror"
	"github.com/gitmirror/astuto-sync/internal/integrations/astuto"
	"github.com/gitmirror/astuto-sync/internal/integrations/github"
)

// boardServer is an in-memory Astuto stand-in: it stores created posts and
// serves them back, so a second sync run sees its own output.
type boardServer struct {
	mu      sync.Mutex
	posts   []astuto.Post
	creates int
}

func (b *boardServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("page") == "1" {
			_ = json.NewEncoder(w).Encode(b.posts)
			return
		}
		fmt.Fprint(w, `[]`)
	case http.MethodPost:
		var payload astuto.NewPost
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.creates++
		post := astuto.Post{
			ID:          len(b.posts) + 1,
			Title:       payload.Title,
			Description: payload.Description,
			BoardID:     payload.BoardID,
			Status:      payload.Status,
		}
		b.posts = append(b.posts, post)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(post)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// sourceHandler serves a single page with two open issues.
func sourceHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `[
		{"number": 1, "title": "Bug A", "body": "a is broken",
		 "html_url": "https://github.com/octo/demo/issues/1", "state": "open",
		 "created_at": "2024-01-02T03:04:05Z"},
		{"number": 2, "title": "Bug B", "body": "b is broken",
		 "html_url": "https://github.com/octo/demo/issues/2", "state": "closed",
		 "created_at": "2024-01-03T03:04:05Z"}
	]`)
}

func testConfig(astutoURL string) config.Config {
	cfg := config.Config{}
	cfg.Source.Owner = "octo"
	cfg.Source.Repo = "demo"
	cfg.Source.State = "all"
	cfg.Astuto.BaseURL = astutoURL
	cfg.Astuto.APIKey = "test-key"
	cfg.Astuto.BoardID = 3
	cfg.Sync.PageSize = 100
	cfg.Sync.MaxRetries = 1
	cfg.Sync.MaxRateLimitWaits = 1
	cfg.Sync.RequestTimeout = config.Duration(5 * time.Second)
	return cfg
}

func newDriver(t *testing.T, cfg config.Config, sourceURL string) *mirror.Driver {
	t.Helper()
	log := zerolog.Nop()

	source, err := github.NewClient(context.Background(), cfg, log).WithBaseURL(sourceURL)
	require.NoError(t, err)

	board := astuto.NewClient(cfg, log)
	publisher := mirror.NewPublisher(board, cfg.Astuto.BoardID, 0, log)
	return mirror.NewDriver(source, publisher, log)
}

func TestEndToEndSync(t *testing.T) {
	board := &boardServer{}
	astutoSrv := httptest.NewServer(board)
	defer astutoSrv.Close()

	ghSrv := httptest.NewServer(http.HandlerFunc(sourceHandler))
	defer ghSrv.Close()

	cfg := testConfig(astutoSrv.URL)

	summary, err := newDriver(t, cfg, ghSrv.URL).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)

	require.Len(t, board.posts, 2)
	assert.Equal(t, "Bug A", board.posts[0].Title)
	assert.Contains(t, board.posts[0].Description, "https://github.com/octo/demo/issues/1")
	assert.Equal(t, "under_review", board.posts[0].Status)
	assert.Equal(t, "Bug B", board.posts[1].Title)
	assert.Contains(t, board.posts[1].Description, "https://github.com/octo/demo/issues/2")
	assert.Equal(t, "closed", board.posts[1].Status)
}

func TestEndToEndSecondRunIsIdempotent(t *testing.T) {
	board := &boardServer{}
	astutoSrv := httptest.NewServer(board)
	defer astutoSrv.Close()

	ghSrv := httptest.NewServer(http.HandlerFunc(sourceHandler))
	defer ghSrv.Close()

	cfg := testConfig(astutoSrv.URL)

	first, err := newDriver(t, cfg, ghSrv.URL).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, first.Created)

	second, err := newDriver(t, cfg, ghSrv.URL).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, 2, board.creates, "the second run must not create anything")
}
