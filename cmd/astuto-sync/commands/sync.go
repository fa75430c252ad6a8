package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gitmirror/astuto-sync/internal/core/mirror"
	"github.com/gitmirror/astuto-sync/internal/integrations/astuto"
	"github.com/gitmirror/astuto-sync/internal/integrations/github"
	"github.com/gitmirror/astuto-sync/internal/logger"
	"github.com/gitmirror/astuto-sync/internal/tui"
)

var (
	dryRun bool
	noTUI  bool
)

// syncCmd runs a single sync pass.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass from GitHub to the board",
	Long: `Fetch the source repository's issues and create a board post for every
issue that is not mirrored yet. Per-issue publish failures are reported in the
summary without aborting the run; a source-side fetch failure ends the run
early with a non-zero exit code.`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log would-be creations without calling the board API")
	syncCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable the live progress view")
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.New(*cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := github.NewClient(ctx, *cfg, log)
	board := astuto.NewClient(*cfg, log)
	publisher := mirror.NewPublisher(board, cfg.Astuto.BoardID, time.Duration(cfg.Sync.CreateDelay), log).
		WithDryRun(dryRun)
	driver := mirror.NewDriver(source, publisher, log)

	// Plain output in CI and when the progress view is disabled.
	isCI := os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
	if noTUI || isCI {
		summary, err := driver.Run(ctx)
		fmt.Print(tui.RenderSummary(summary))
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan mirror.Event)
	driver = driver.WithEvents(events)

	var summary mirror.Summary
	var runErr error
	done := make(chan struct{})
	go func() {
		summary, runErr = driver.Run(ctx)
		close(events)
		close(done)
	}()

	repo := cfg.Source.Owner + "/" + cfg.Source.Repo
	p := tea.NewProgram(tui.NewModel(repo, events, cancel))
	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return fmt.Errorf("running progress view: %w", err)
	}
	<-done

	fmt.Print(tui.RenderSummary(summary))
	return runErr
}
