package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"codeberg.org/snonux/csvtrans/internal/accounts"
	"codeberg.org/snonux/csvtrans/internal/archive"
	"codeberg.org/snonux/csvtrans/internal/batch"
	"codeberg.org/snonux/csvtrans/internal/cache"
	"codeberg.org/snonux/csvtrans/internal/config"
	"codeberg.org/snonux/csvtrans/internal/language"
	"codeberg.org/snonux/csvtrans/internal/pipeline"
	"codeberg.org/snonux/csvtrans/internal/store"
	"codeberg.org/snonux/csvtrans/internal/translation"
)

// Endpoints overrides the provider URLs. Empty fields use the defaults.
type Endpoints struct {
	Google        string
	BingToken     string
	BingTranslate string
}

// Options configures a Processor
type Options struct {
	Stdout    io.Writer
	Logger    zerolog.Logger
	Endpoints Endpoints
	// BaseDelay overrides the first retry backoff
	BaseDelay time.Duration
}

// Result describes a finished run
type Result struct {
	Stats    pipeline.Stats
	Cache    cache.Stats
	Files    []string
	Archived []string
	// CacheEntries is the size of the persistent cache after the run
	CacheEntries int
}

// Processor runs one batch: it reads the input and accounts, builds the
// provider clients, runs the pipeline and writes one file per active stage.
type Processor struct {
	cfg       *config.Config
	out       io.Writer
	logger    zerolog.Logger
	endpoints Endpoints
	baseDelay time.Duration
}

// NewProcessor creates a new batch processor
func NewProcessor(cfg *config.Config, opts Options) *Processor {
	out := opts.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &Processor{
		cfg:       cfg,
		out:       out,
		logger:    opts.Logger,
		endpoints: opts.Endpoints,
		baseDelay: opts.BaseDelay,
	}
}

// Run executes the batch. Every fatal error is returned before the first
// output file is written; failed translations only show up in the stats.
func (p *Processor) Run(ctx context.Context) (*Result, error) {
	rows, err := batch.ReadRows(p.cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	clients, err := p.buildClients()
	if err != nil {
		return nil, err
	}

	var persistent cache.Store
	if p.cfg.CacheDB != "" {
		db, err := store.OpenSQLite(p.cfg.CacheDB)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		persistent = db
	}
	memo := cache.New(persistent)

	stages := pipeline.BuildStages(p.cfg)
	p.warnUnknownLanguages(stages)
	p.logger.Info().
		Str("input", p.cfg.InputPath).
		Int("rows", len(rows)).
		Int("stages", len(stages)).
		Str("columns", p.cfg.Columns.String()).
		Bool("google", p.cfg.UseGoogle).
		Bool("bing", p.cfg.UseBing).
		Msg("starting batch")

	pipe := pipeline.New(pipeline.Options{
		Stages:  stages,
		Columns: p.cfg.Columns,
		Clients: clients,
		Cache:   memo,
		Workers: p.cfg.Workers,
		Logger:  p.logger,
	})

	buffers, stats, err := pipe.Run(ctx, rows)
	if err != nil {
		return nil, err
	}

	result := &Result{Stats: stats, Cache: memo.Stats()}
	if db, ok := persistent.(*store.SQLiteStore); ok {
		n, err := db.Count(ctx)
		if err != nil {
			p.logger.Warn().Err(err).Msg("could not count cached translations")
		} else {
			result.CacheEntries = n
		}
	}

	active := pipeline.ActiveStages(stages, p.cfg.UseGoogle, p.cfg.UseBing)
	paths := make(map[int]string, len(active))
	var ordered []string
	for _, st := range active {
		path := batch.OutputPath(p.cfg.OutputPath, st.Key)
		paths[st.Index] = path
		ordered = append(ordered, path)
	}

	if p.cfg.Archive {
		archived, err := archive.ArchiveOutputs(ordered)
		if err != nil {
			return nil, err
		}
		for _, a := range archived {
			fmt.Fprintf(p.out, "Archived previous output to: %s\n", a)
		}
		result.Archived = archived
	}

	for _, buf := range buffers {
		path, ok := paths[buf.Stage.Index]
		if !ok {
			continue
		}
		if err := batch.WriteRows(path, buf.Rows); err != nil {
			return nil, err
		}
		p.logger.Info().Str("stage", buf.Stage.Key).Str("file", path).Msg("wrote output")
		result.Files = append(result.Files, path)
	}

	p.printSummary(result)
	return result, nil
}

// warnUnknownLanguages logs chain tokens the stage's provider does not list.
// They still run and resolve to English.
func (p *Processor) warnUnknownLanguages(stages []pipeline.Stage) {
	catalogs := map[accounts.ProviderKind]language.Catalog{
		accounts.KindGoogle: language.Google,
		accounts.KindBing:   language.Bing,
	}
	for _, st := range stages {
		catalog, ok := catalogs[st.Provider]
		if !ok {
			continue
		}
		for _, token := range []string{st.Source, st.Target} {
			if language.IsAuto(token) || catalog.Known(token) {
				continue
			}
			p.logger.Warn().
				Str("stage", st.Key).
				Str("language", token).
				Msg("unknown language, using English")
		}
	}
}

// buildClients creates a resilient client for every enabled provider.
func (p *Processor) buildClients() (map[accounts.ProviderKind]translation.Provider, error) {
	clients := make(map[accounts.ProviderKind]translation.Provider)
	if !p.cfg.UseGoogle && !p.cfg.UseBing {
		return clients, nil
	}

	set, err := accounts.Read(p.cfg.AccountsPath)
	if err != nil {
		return nil, err
	}

	httpClient, err := translation.NewHTTPClient(translation.HTTPConfig{
		Timeout: p.cfg.Timeout,
		Proxy:   p.cfg.Proxy,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfig, err)
	}

	resilience := translation.DefaultResilienceConfig()
	resilience.MaxRetries = p.cfg.MaxRetries
	resilience.RequestsPerSecond = p.cfg.RequestsPerSecond
	if p.baseDelay > 0 {
		resilience.BaseDelay = p.baseDelay
	}

	if p.cfg.UseGoogle {
		if set.Google == nil {
			return nil, fmt.Errorf("%w: no google account in %s", accounts.ErrAccounts, p.cfg.AccountsPath)
		}
		google, err := translation.NewGoogleClient(translation.GoogleConfig{
			APIKey:     set.Google.APIKey,
			Endpoint:   p.endpoints.Google,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", accounts.ErrAccounts, err)
		}
		clients[accounts.KindGoogle] = translation.NewResilient(google, resilience, p.logger)
	}

	if p.cfg.UseBing {
		if set.Bing == nil {
			return nil, fmt.Errorf("%w: no bing account in %s", accounts.ErrAccounts, p.cfg.AccountsPath)
		}
		bing, err := translation.NewBingClient(translation.BingConfig{
			ClientID:     set.Bing.ClientID,
			ClientSecret: set.Bing.ClientSecret,
			TokenURL:     p.endpoints.BingToken,
			Endpoint:     p.endpoints.BingTranslate,
			HTTPClient:   httpClient,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", accounts.ErrAccounts, err)
		}
		clients[accounts.KindBing] = translation.NewResilient(bing, resilience, p.logger)
	}

	return clients, nil
}

func (p *Processor) printSummary(r *Result) {
	p.logger.Info().
		Int("rows", r.Stats.Rows).
		Int("cells", r.Stats.Cells).
		Int("translated", r.Stats.Translated).
		Int("cached", r.Stats.Cached).
		Int("failed", r.Stats.Failed).
		Int("passed_through", r.Stats.PassedThrough).
		Msg("batch finished")

	fmt.Fprintf(p.out, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(p.out, "Total rows: %d\n", r.Stats.Rows)
	fmt.Fprintf(p.out, "Cells: %d\n", r.Stats.Cells)
	fmt.Fprintf(p.out, "Translated: %d\n", r.Stats.Translated)
	fmt.Fprintf(p.out, "From cache: %d\n", r.Stats.Cached)
	fmt.Fprintf(p.out, "Passed through: %d\n", r.Stats.PassedThrough)
	if r.Stats.Failed > 0 {
		fmt.Fprintf(p.out, "Failed (kept original): %d\n", r.Stats.Failed)
	}
	if p.cfg.CacheDB != "" {
		fmt.Fprintf(p.out, "Cache entries: %d\n", r.CacheEntries)
	}
	for _, f := range r.Files {
		fmt.Fprintf(p.out, "Wrote: %s\n", f)
	}
	fmt.Fprintf(p.out, "================================\n")
}
