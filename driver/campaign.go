package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/ctmsim/dist"
	"github.com/sarchlab/ctmsim/enum"
)

const progressInterval = 10 * time.Second

// Campaign is one enumeration-and-simulation run over a machine
// space. Create with New, execute with Run.
type Campaign struct {
	cfg Config
	agg *dist.Aggregator

	// processed mirrors the aggregator's processed count for the
	// progress reporter; the aggregator itself is touched only by the
	// merge loop.
	processed    atomic.Uint64
	lastQuotient uint64
}

// New validates the configuration and creates a campaign.
func New(cfg Config) (*Campaign, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Campaign{cfg: cfg}, nil
}

// Run executes the campaign: resume from checkpoint if present,
// partition the remaining index space into chunks, simulate them
// across workers, merge tallies with checkpoint cadence, then apply
// completion rules and write the final distribution.
//
// Cancellation is cooperative between chunks: a cancelled run
// persists the aggregator as-is to the checkpoint path and returns
// the context error together with the aggregator. A worker failure
// aborts the campaign; the last successful checkpoint remains valid.
func (c *Campaign) Run(ctx context.Context) (*dist.Aggregator, error) {
	agg, err := c.resume()
	if err != nil {
		return nil, err
	}
	c.agg = agg
	c.processed.Store(agg.TotalProcessedRaw)
	if c.cfg.CheckpointInterval > 0 {
		c.lastQuotient = agg.TotalProcessedRaw / c.cfg.CheckpointInterval
	}

	ranges, err := c.enumRanges()
	if err != nil {
		return nil, err
	}
	total := enum.TotalLen(ranges)
	skip := agg.TotalProcessedRaw
	if skip > total {
		return nil, fmt.Errorf("%w: checkpoint records %d processed but the space has %d machines",
			dist.ErrInvalidCheckpoint, skip, total)
	}

	chunks := enum.Chunks(ranges, skip, c.cfg.Limit, c.cfg.BatchSize)
	c.cfg.Logger.Info().
		Int("n_states", c.cfg.NumStates).
		Bool("reduced", c.cfg.UseReducedEnum).
		Uint64("machines", enum.TotalLen(chunks)).
		Int("workers", c.cfg.Workers).
		Msg("starting campaign")

	if err := c.runPool(ctx, chunks); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.persistOnCancel()
		}
		return agg, err
	}

	if err := c.finalize(); err != nil {
		return agg, err
	}
	return agg, nil
}

// resume loads the checkpoint if one exists, validating that it
// belongs to this campaign's machine space.
func (c *Campaign) resume() (*dist.Aggregator, error) {
	if c.cfg.CheckpointPath == "" {
		return dist.NewAggregator(c.cfg.NumStates), nil
	}
	if _, err := os.Stat(c.cfg.CheckpointPath); err != nil {
		if os.IsNotExist(err) {
			return dist.NewAggregator(c.cfg.NumStates), nil
		}
		return nil, fmt.Errorf("checking checkpoint: %w", err)
	}

	agg, err := dist.LoadFile(c.cfg.CheckpointPath, true)
	if err != nil {
		return nil, err
	}
	if agg.NumStates != c.cfg.NumStates {
		return nil, fmt.Errorf("%w: checkpoint has n-states %d, campaign configured for %d",
			dist.ErrInvalidCheckpoint, agg.NumStates, c.cfg.NumStates)
	}
	c.cfg.Logger.Info().
		Uint64("processed", agg.TotalProcessedRaw).
		Str("path", c.cfg.CheckpointPath).
		Msg("resuming from checkpoint")
	return agg, nil
}

func (c *Campaign) enumRanges() ([]enum.Range, error) {
	if c.cfg.UseReducedEnum {
		return enum.ReducedRanges(c.cfg.NumStates)
	}
	r, err := enum.RawRange(c.cfg.NumStates)
	if err != nil {
		return nil, err
	}
	return []enum.Range{r}, nil
}

// chunkJob is one unit of work handed to a worker. The sequence
// number restores enumeration order at the merge loop.
type chunkJob struct {
	seq   int
	chunk enum.Range
}

// chunkResult is a completed chunk's tally.
type chunkResult struct {
	seq   int
	tally *dist.Tally
}

// runPool simulates the chunks across the configured workers. Worker
// results fan in to a single merge loop, which is the only goroutine
// touching the aggregator; merges are therefore whole with respect to
// checkpoint writes. Results are re-ordered back into enumeration
// order before merging, so the merged set is always a prefix of the
// enumeration and checkpoints resume exactly-once by skipping
// total_processed_raw indices.
func (c *Campaign) runPool(ctx context.Context, chunks []enum.Range) error {
	if len(chunks) == 0 {
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	done := gctx.Done()

	jobCh := make(chan chunkJob)
	g.Go(func() error {
		defer close(jobCh)
		for i, chunk := range chunks {
			select {
			case jobCh <- chunkJob{seq: i, chunk: chunk}:
			case <-done:
				return gctx.Err()
			}
		}
		return nil
	})

	resultChs := make([]<-chan chunkResult, c.cfg.Workers)
	for i := range resultChs {
		out := make(chan chunkResult)
		resultChs[i] = out
		g.Go(func() error {
			defer close(out)
			w := newWorker(&c.cfg)
			for job := range channerics.OrDone(done, jobCh) {
				tally, err := w.process(job.chunk)
				if err != nil {
					return err
				}
				select {
				case out <- chunkResult{seq: job.seq, tally: tally}:
				case <-done:
					return gctx.Err()
				}
			}
			return nil
		})
	}

	stopProgress := make(chan struct{})
	go c.reportProgress(stopProgress)
	defer close(stopProgress)

	// Reorder buffer: tallies are merged strictly in chunk order.
	// Out-of-order arrivals wait; the buffer stays small because
	// workers drain jobs roughly in order.
	pending := make(map[int]*dist.Tally, c.cfg.Workers)
	next := 0
	var mergeErr error
	for result := range channerics.Merge(done, resultChs...) {
		if mergeErr != nil {
			continue
		}
		pending[result.seq] = result.tally
		for tally, ok := pending[next]; ok; tally, ok = pending[next] {
			delete(pending, next)
			next++
			c.agg.Merge(tally)
			c.processed.Store(c.agg.TotalProcessedRaw)
			if err := c.maybeCheckpoint(); err != nil {
				mergeErr = err
				break
			}
		}
	}

	waitErr := g.Wait()
	if mergeErr != nil {
		return mergeErr
	}
	return waitErr
}

// maybeCheckpoint writes a checkpoint when the processed count has
// crossed into a new checkpoint-interval quotient.
func (c *Campaign) maybeCheckpoint() error {
	if c.cfg.CheckpointPath == "" {
		return nil
	}
	quotient := c.agg.TotalProcessedRaw / c.cfg.CheckpointInterval
	if quotient <= c.lastQuotient {
		return nil
	}
	if err := c.agg.SaveFile(c.cfg.CheckpointPath, true); err != nil {
		return err
	}
	c.lastQuotient = quotient
	c.cfg.Logger.Info().
		Uint64("processed", c.agg.TotalProcessedRaw).
		Str("path", c.cfg.CheckpointPath).
		Msg("checkpoint written")
	return nil
}

// persistOnCancel checkpoints the aggregator after a cooperative
// cancellation. No chunk is ever half-merged, so the saved state
// resumes cleanly.
func (c *Campaign) persistOnCancel() {
	if c.cfg.CheckpointPath == "" {
		return
	}
	if err := c.agg.SaveFile(c.cfg.CheckpointPath, true); err != nil {
		c.cfg.Logger.Error().Err(err).Msg("saving checkpoint on cancellation")
		return
	}
	c.cfg.Logger.Info().
		Uint64("processed", c.agg.TotalProcessedRaw).
		Str("path", c.cfg.CheckpointPath).
		Msg("cancelled; checkpoint written")
}

// finalize applies completion rules (reduced enumeration), computes
// D, and writes the final distribution.
func (c *Campaign) finalize() error {
	if c.cfg.UseReducedEnum {
		if err := c.agg.ApplyCompletionRules(c.agg.TotalProcessedRaw); err != nil {
			return err
		}
	}
	if err := c.agg.CalculateD(); err != nil {
		return err
	}
	if c.cfg.OutputPath != "" {
		if err := c.agg.SaveFile(c.cfg.OutputPath, false); err != nil {
			return err
		}
		c.cfg.Logger.Info().
			Uint64("halting", c.agg.TotalHaltingRaw).
			Uint64("processed", c.agg.TotalProcessedRaw).
			Str("path", c.cfg.OutputPath).
			Msg("distribution written")
	}
	return nil
}

func (c *Campaign) reportProgress(done <-chan struct{}) {
	for range channerics.NewTicker(done, progressInterval) {
		c.cfg.Logger.Info().Uint64("processed", c.processed.Load()).Msg("progress")
	}
}
