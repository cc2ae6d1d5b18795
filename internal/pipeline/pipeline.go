// Package pipeline runs every selected cell of a batch through the chain of
// translation stages. Each stage consumes the previous stage's output for
// the same cell, every provider call goes through the shared cache, and a
// failed call leaves the cell unchanged instead of aborting the run.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/csvtrans/internal/accounts"
	"codeberg.org/snonux/csvtrans/internal/batch"
	"codeberg.org/snonux/csvtrans/internal/cache"
	"codeberg.org/snonux/csvtrans/internal/config"
	"codeberg.org/snonux/csvtrans/internal/language"
	"codeberg.org/snonux/csvtrans/internal/translation"
)

// Options configures a Pipeline
type Options struct {
	Stages  []Stage
	Columns config.ColumnSelector
	// Clients maps each provider kind to its client; a missing client makes
	// the stage pass values through
	Clients map[accounts.ProviderKind]translation.Provider
	// Cache is shared by all stages; a nil cache gets a fresh in-memory one
	Cache   *cache.Cache
	Workers int
	Logger  zerolog.Logger
}

// Buffer holds the rows produced by one stage, in input order
type Buffer struct {
	Stage Stage
	Rows  []batch.Row
}

// Stats summarizes a run. Cells counts every selected cell per stage.
type Stats struct {
	Rows          int
	Cells         int
	Translated    int
	Cached        int
	Failed        int
	PassedThrough int
}

// Pipeline is the context object shared by all stages of a run
type Pipeline struct {
	stages  []Stage
	columns config.ColumnSelector
	clients map[accounts.ProviderKind]translation.Provider
	cache   *cache.Cache
	workers int
	logger  zerolog.Logger
	detect  func(string) string
}

// counters tallies one Run; a fresh set is used per call
type counters struct {
	cells         atomic.Int64
	translated    atomic.Int64
	cached        atomic.Int64
	failed        atomic.Int64
	passedThrough atomic.Int64
}

func (c *counters) stats(rows int) Stats {
	return Stats{
		Rows:          rows,
		Cells:         int(c.cells.Load()),
		Translated:    int(c.translated.Load()),
		Cached:        int(c.cached.Load()),
		Failed:        int(c.failed.Load()),
		PassedThrough: int(c.passedThrough.Load()),
	}
}

// New creates a Pipeline
func New(opts Options) *Pipeline {
	c := opts.Cache
	if c == nil {
		c = cache.New(nil)
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		stages:  opts.Stages,
		columns: opts.Columns,
		clients: opts.Clients,
		cache:   c,
		workers: workers,
		logger:  opts.Logger,
		detect:  language.Detect,
	}
}

// Run translates rows and returns one buffer per stage, in stage order.
// Rows are processed by a bounded pool of workers; stages run in order for
// each row and results are stored by row index. Provider failures are logged
// and counted, only cancellation of ctx fails the run. Stats cover this call
// only, so a Pipeline can be run again over another batch.
func (p *Pipeline) Run(ctx context.Context, rows []batch.Row) ([]Buffer, Stats, error) {
	var c counters
	buffers := make([]Buffer, len(p.stages))
	for i, st := range p.stages {
		buffers[i] = Buffer{Stage: st, Rows: make([]batch.Row, len(rows))}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, row := range rows {
		if gctx.Err() != nil {
			break
		}
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for s, out := range p.processRow(gctx, &c, i, row) {
				buffers[s].Rows[i] = out
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, c.stats(len(rows)), fmt.Errorf("pipeline canceled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, c.stats(len(rows)), fmt.Errorf("pipeline canceled: %w", err)
	}

	return buffers, c.stats(len(rows)), nil
}

// processRow threads the selected cells of one row through every stage and
// returns the row as it looks after each stage.
func (p *Pipeline) processRow(ctx context.Context, c *counters, rowIndex int, row batch.Row) []batch.Row {
	current := row.Clone()
	out := make([]batch.Row, len(p.stages))

	for s, st := range p.stages {
		for col := range current {
			if !p.columns.Contains(col) {
				continue
			}
			current[col] = p.translateCell(ctx, c, st, rowIndex, col, current[col])
		}
		out[s] = current.Clone()
	}
	return out
}

func (p *Pipeline) translateCell(ctx context.Context, c *counters, st Stage, rowIndex, col int, text string) string {
	c.cells.Add(1)

	client := p.clients[st.Provider]
	if st.Provider == accounts.KindNone || client == nil || strings.TrimSpace(text) == "" {
		c.passedThrough.Add(1)
		return text
	}

	source := st.Source
	if language.IsAuto(source) {
		source = p.detect(text)
		if source == "" {
			source = language.English.Code
		}
	}

	key := cache.NewKey(text, source, st.Target)
	value, hit, err := p.cache.GetOrCompute(ctx, key, func(ctx context.Context) (string, error) {
		return client.Translate(ctx, key.Text, source, st.Target)
	})
	if err != nil {
		c.failed.Add(1)
		p.logger.Warn().
			Int("row", rowIndex+1).
			Int("column", col+1).
			Str("stage", st.Key).
			Str("provider", client.Name()).
			Err(err).
			Msg("translation failed, keeping value")
		return text
	}

	if hit {
		c.cached.Add(1)
	} else {
		c.translated.Add(1)
	}
	p.logger.Debug().
		Int("row", rowIndex+1).
		Int("column", col+1).
		Str("stage", st.Key).
		Bool("cached", hit).
		Msg("translated")
	return value
}
