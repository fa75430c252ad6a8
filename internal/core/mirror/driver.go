package mirror

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IssueSource yields normalized issue records in source order. The sequence is
// lazy and restartable from scratch; there is no checkpointing.
type IssueSource interface {
	ForEachIssue(ctx context.Context, fn func(Issue) error) error
}

// Driver orchestrates one run: load the dedup snapshot, walk the source
// sequence, publish each record, aggregate the summary. All outcome logging
// happens here rather than inside the reader or publisher.
type Driver struct {
	source    IssueSource
	publisher *Publisher
	log       zerolog.Logger
	events    chan<- Event
}

// NewDriver wires a source and a publisher together.
func NewDriver(source IssueSource, publisher *Publisher, log zerolog.Logger) *Driver {
	return &Driver{
		source:    source,
		publisher: publisher,
		log:       log,
	}
}

// WithEvents makes the driver emit per-issue progress events, for the TUI.
func (d *Driver) WithEvents(events chan<- Event) *Driver {
	d.events = events
	return d
}

// Run executes one sync pass. A per-issue publish failure is recorded and the
// run continues; a source-side failure ends the run early and is returned
// alongside the partial summary. Exactly one outcome is recorded per issue.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	summary := Summary{RunID: uuid.NewString()}
	log := d.log.With().Str("run_id", summary.RunID).Logger()

	existing, err := d.publisher.LoadExisting(ctx)
	if err != nil {
		return summary, err
	}
	log.Info().Int("existing_markers", existing).Msg("starting sync")

	err = d.source.ForEachIssue(ctx, func(issue Issue) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		outcome, perr := d.publisher.Publish(ctx, issue)
		switch outcome {
		case OutcomeCreated:
			summary.Created++
			log.Info().Int("issue", issue.Number).Str("title", issue.Title).Msg("created post")
		case OutcomeSkipped:
			summary.Skipped++
			log.Debug().Int("issue", issue.Number).Msg("already mirrored, skipping")
		case OutcomeFailed:
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{Number: issue.Number, Reason: perr.Error()})
			log.Error().Err(perr).Int("issue", issue.Number).Msg("failed to create post")
		}

		d.emit(ctx, Event{Number: issue.Number, Title: issue.Title, Outcome: outcome, Err: perr})
		return nil
	})

	if err != nil {
		log.Error().Err(err).
			Int("created", summary.Created).Int("skipped", summary.Skipped).Int("failed", summary.Failed).
			Msg("sync aborted")
		return summary, err
	}

	log.Info().
		Int("created", summary.Created).Int("skipped", summary.Skipped).Int("failed", summary.Failed).
		Int("total", summary.Total()).
		Msg("sync complete")
	return summary, nil
}

func (d *Driver) emit(ctx context.Context, ev Event) {
	if d.events == nil {
		return
	}
	select {
	case d.events <- ev:
	case <-ctx.Done():
	}
}
