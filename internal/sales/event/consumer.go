package event

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/gosales/internal/pkg/pkgerror"
	"github.com/shandysiswandi/gosales/internal/sales/entity"
)

// Handler consumes one bus message.
type Handler interface {
	Handle(ctx context.Context, n entity.Notification) error
}

// ConsumerConfig tunes the status consumer. Zero values mean one worker,
// no retries, 100ms base backoff.
type ConsumerConfig struct {
	Workers     int
	MaxRetries  int
	BaseBackoff time.Duration
}

func (cfg ConsumerConfig) withDefaults() ConsumerConfig {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 100 * time.Millisecond
	}
	return cfg
}

// StatusConsumer drains the bus and hands every message to its handler.
type StatusConsumer struct {
	bus     *Bus
	handler Handler
	cfg     ConsumerConfig
	wg      sync.WaitGroup
}

func NewStatusConsumer(bus *Bus, handler Handler, cfg ConsumerConfig) *StatusConsumer {
	return &StatusConsumer{bus: bus, handler: handler, cfg: cfg.withDefaults()}
}

// Start launches the worker pool. More than one worker lets updates for a
// single job interleave; the default of one preserves publish order.
func (c *StatusConsumer) Start() {
	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.drain()
	}
}

// Stop closes the bus and waits for the workers to finish the backlog, up
// to ctx's deadline.
func (c *StatusConsumer) Stop(ctx context.Context) error {
	if c.bus != nil {
		c.bus.Close()
	}

	idle := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(idle)
	}()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *StatusConsumer) drain() {
	defer c.wg.Done()

	for n := range c.bus.Subscribe() {
		c.apply(n)
	}
}

// apply hands one message to the handler, retrying transient failures with
// doubling backoff.
func (c *StatusConsumer) apply(n entity.Notification) {
	if c.handler == nil {
		return
	}

	backoff := c.cfg.BaseBackoff
	for attempt := 0; ; attempt++ {
		err := c.handler.Handle(context.Background(), n)
		if err == nil {
			return
		}

		// A missing job will not appear by waiting.
		if errors.Is(err, pkgerror.ErrNotFound) {
			slog.Warn("dropping status update for unknown job", "job_id", n.JobID, "error", err)
			return
		}

		if attempt == c.cfg.MaxRetries {
			slog.Error("giving up on status update", "job_id", n.JobID, "attempts", attempt+1, "error", err)
			return
		}

		time.Sleep(backoff)
		backoff *= 2
	}
}

// MetaStore is the slice of the job store the projector needs.
type MetaStore interface {
	UpdateMeta(ctx context.Context, jobID string, fn func(meta *entity.JobMeta)) error
}

// StatusProjector folds progress messages into the stored job record so
// pollers see live counters. Summaries, errors and terminal statuses are
// written by the stream driver itself; a projector that raced them could
// resurrect a finished job, so anything not in flight is left alone.
type StatusProjector struct {
	store MetaStore
}

func NewStatusProjector(store MetaStore) *StatusProjector {
	return &StatusProjector{store: store}
}

func (p *StatusProjector) Handle(ctx context.Context, n entity.Notification) error {
	if n.JobID == "" {
		return errors.New("missing job id")
	}
	if n.Progress == nil {
		return nil
	}

	progress := *n.Progress
	return p.store.UpdateMeta(ctx, n.JobID, func(meta *entity.JobMeta) {
		if meta.Status != entity.JobStatusProcessing {
			return
		}
		if progress.ProcessedPercentage < meta.ProcessedPercentage {
			return
		}
		meta.RowsProcessed = progress.RowsProcessed
		meta.MalformedRows = progress.MalformedRows
		meta.ProcessedPercentage = progress.ProcessedPercentage
		meta.Message = progress.Message
	})
}
