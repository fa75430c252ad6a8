package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/gitmirror/astuto-sync/internal/core/mirror"
	"github.com/gitmirror/astuto-sync/internal/integrations/astuto"
	"github.com/gitmirror/astuto-sync/internal/integrations/github"
	"github.com/gitmirror/astuto-sync/internal/logger"
)

// scheduleCmd runs sync passes periodically until interrupted.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run sync passes on a cron schedule",
	Long: `Run sync passes periodically, driven by the cron spec in sync.schedule
(for example "@every 1h" or "0 * * * *"). A tick that fires while the previous
run is still in progress is skipped. Stops on SIGINT or SIGTERM.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Sync.Schedule == "" {
		return fmt.Errorf("sync.schedule is required for the schedule command")
	}
	log := logger.New(*cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := github.NewClient(ctx, *cfg, log)
	board := astuto.NewClient(*cfg, log)

	var running sync.Mutex
	c := cron.New()
	_, err = c.AddFunc(cfg.Sync.Schedule, func() {
		if !running.TryLock() {
			log.Warn().Msg("previous run still in progress, skipping tick")
			return
		}
		defer running.Unlock()

		// A fresh publisher per run re-reads the board, so posts created
		// outside this process are still deduped.
		publisher := mirror.NewPublisher(board, cfg.Astuto.BoardID, time.Duration(cfg.Sync.CreateDelay), log)
		driver := mirror.NewDriver(source, publisher, log)
		if _, err := driver.Run(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", cfg.Sync.Schedule, err)
	}

	log.Info().Str("schedule", cfg.Sync.Schedule).Msg("scheduler started")
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	log.Info().Msg("scheduler stopped")
	return nil
}
