// Package pipeline drives a batch run: scan the configured roots, collapse
// duplicate downloads, parse documents concurrently, attribute billing
// periods, and fold everything into monthly records.
package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"tally/internal/aggregate"
	"tally/internal/config"
	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/period"
	"tally/internal/scan"
	"tally/internal/source"
	"tally/internal/verify"
	"tally/internal/workbook"
)

// Options configure a pipeline run.
type Options struct {
	Registry      *source.Registry
	PlatformRoot  string
	Warehouses    []config.WarehouseSource
	Workers       int
	ReferenceYear int
	Logger        *log.Logger

	// Open is a seam for tests; nil means workbook.Open.
	Open func(path string) (workbook.Document, error)
}

// Summary is the run's accounting of what happened to every file and entry.
type Summary struct {
	RunID               string
	FilesScanned        int
	DuplicatesCollapsed int
	FilesParsed         int
	FilesSkipped        map[string]int
	EntriesIncluded     int
	EntriesExcluded     int
	EntriesSkipped      int
	Warnings            []core.Warning
	Elapsed             time.Duration
}

// Result is the outcome of one batch run.
type Result struct {
	Summary Summary
	Records []*aggregate.Record
}

type boundFile struct {
	meta    scan.FileMeta
	adapter source.Adapter
}

type Pipeline struct {
	opts       Options
	attributor *period.Attributor
	verifier   *verify.Verifier
	open       func(path string) (workbook.Document, error)
	logger     *log.Logger
}

func New(opts Options) (*Pipeline, error) {
	if opts.Registry == nil {
		opts.Registry = source.DefaultRegistry()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	open := opts.Open
	if open == nil {
		open = workbook.Open
	}
	return &Pipeline{
		opts:       opts,
		attributor: period.New(),
		verifier:   verify.New(),
		open:       open,
		logger:     logger.WithComponent(log.ComponentPipeline),
	}, nil
}

// Run executes the batch. The returned error covers infrastructure failures
// only; per-file problems are warnings on the summary.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	summary := Summary{
		RunID:        uuid.NewString(),
		FilesSkipped: make(map[string]int),
	}
	p.logger.Info("run started", log.FieldRunID, summary.RunID)

	files, err := p.collect(&summary)
	if err != nil {
		return nil, err
	}

	// duplicates are resolved before any document is opened
	metas := make([]scan.FileMeta, len(files))
	byPath := make(map[string]source.Adapter, len(files))
	for i, f := range files {
		metas[i] = f.meta
		byPath[f.meta.Path] = f.adapter
	}
	summary.FilesScanned = len(metas)
	deduped := scan.Dedupe(metas)
	summary.DuplicatesCollapsed = len(metas) - len(deduped)

	results := p.parseAll(ctx, deduped, byPath, &summary)

	book := aggregate.NewBook()
	for _, res := range results {
		p.fold(res, book, &summary)
	}

	summary.Elapsed = time.Since(start)
	p.logger.Info("run finished",
		log.FieldRunID, summary.RunID,
		"files", summary.FilesParsed,
		"months", book.Len(),
		log.FieldEntries, summary.EntriesIncluded,
		log.FieldWarnings, len(summary.Warnings),
		log.FieldDuration, summary.Elapsed.Milliseconds(),
	)
	return &Result{Summary: summary, Records: book.Records()}, nil
}

// collect walks the platform root and every warehouse root, binding each
// file to its adapter up front.
func (p *Pipeline) collect(summary *Summary) ([]boundFile, error) {
	var out []boundFile

	if p.opts.PlatformRoot != "" {
		metas, err := scan.Walk(p.opts.PlatformRoot, "")
		if err != nil {
			return nil, err
		}
		for _, meta := range metas {
			kind, ok := scan.Classify(meta.Name)
			if !ok {
				summary.FilesSkipped["unrecognized"]++
				p.logger.Debug("file not recognized as any platform export", log.FieldFile, meta.Path)
				continue
			}
			meta.Kind = kind
			adapter, ok := p.opts.Registry.Lookup(kind)
			if !ok {
				summary.FilesSkipped["no-adapter"]++
				continue
			}
			out = append(out, boundFile{meta: meta, adapter: adapter})
		}
	}

	for _, w := range p.opts.Warehouses {
		adapter, err := source.NewWarehouse(w.Family, w.Name, w.Currency)
		if err != nil {
			return nil, err
		}
		metas, err := scan.Walk(w.Root, w.Family)
		if err != nil {
			return nil, err
		}
		for _, meta := range metas {
			out = append(out, boundFile{meta: meta, adapter: adapter})
		}
	}
	return out, nil
}

// parseAll fans document parsing out over a bounded worker group and
// returns the per-file results sorted by path, so the fold is deterministic
// regardless of completion order.
func (p *Pipeline) parseAll(ctx context.Context, metas []scan.FileMeta, byPath map[string]source.Adapter, summary *Summary) []core.DocumentResult {
	var (
		mu      sync.Mutex
		results []core.DocumentResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for _, meta := range metas {
		meta := meta
		adapter, ok := byPath[meta.Path]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := p.parseOne(ctx, adapter, meta)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	// workers only fail on context cancellation; collect what completed
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results
}

func (p *Pipeline) parseOne(ctx context.Context, adapter source.Adapter, meta scan.FileMeta) core.DocumentResult {
	doc, err := p.open(meta.Path)
	if err != nil {
		res := core.DocumentResult{Source: adapter.Kind(), File: meta.Path}
		res.Warnf(core.WarnUnreadable, "open: %v", err)
		return res
	}
	defer doc.Close()

	res := adapter.Parse(ctx, doc, meta)
	p.verifier.Check(&res)
	p.attribute(&res, meta)

	p.logger.Info("parsed",
		log.FieldFile, meta.Path,
		log.FieldSource, string(res.Source),
		log.FieldEntity, res.Entity,
		log.FieldEntries, len(res.Entries),
		log.FieldWarnings, len(res.Warnings),
	)
	return res
}

// attribute stamps a billing period on every entry. Row timestamps win;
// without one the document period, then filename and folder tokens apply.
// Entries that resist every strategy keep an empty period and are skipped
// by the fold, with a warning.
func (p *Pipeline) attribute(res *core.DocumentResult, meta scan.FileMeta) {
	rowDated := 0
	for i := range res.Entries {
		e := &res.Entries[i]

		if e.OccurredAt != nil && !e.OccurredAt.IsZero() {
			e.Period = core.PeriodOf(*e.OccurredAt)
			rowDated++
			continue
		}
		if res.Period.Valid() {
			e.Period = res.Period
			continue
		}
		pctx := period.Context{
			FileName:      meta.Name,
			Folder:        meta.Folder,
			ReferenceYear: p.opts.ReferenceYear,
		}
		if token, _, ok := p.attributor.Resolve(pctx); ok {
			e.Period = token
			continue
		}
		res.Warnf(core.WarnUnattributable, "row %d: no billing period from row, file name or folder", e.Provenance.Row)
	}

	if len(res.Entries) > 0 && rowDated == 0 {
		// everything landed in one month on file-level evidence; worth
		// surfacing because a multi-month statement would be collapsed
		res.Warnf(core.WarnDocumentPeriod, "all %d entries attributed without row dates", len(res.Entries))
	}
}

// fold pushes one document's entries into the book and updates the run
// accounting.
func (p *Pipeline) fold(res core.DocumentResult, book *aggregate.Book, summary *Summary) {
	summary.Warnings = append(summary.Warnings, res.Warnings...)

	if len(res.Entries) == 0 {
		if len(res.Warnings) > 0 {
			summary.FilesSkipped[res.Warnings[0].Code]++
			p.logger.Warn("file contributed nothing",
				log.FieldFile, res.File,
				log.FieldReason, res.Warnings[0].Code,
			)
		}
		return
	}
	summary.FilesParsed++

	for _, e := range res.Entries {
		if !e.Period.Valid() {
			summary.EntriesSkipped++
			continue
		}
		if err := book.Add(e); err != nil {
			// unreachable given the check above; counted rather than dropped
			summary.EntriesSkipped++
			continue
		}
		if e.Source.IsCost() || !e.ExcludedFromRevenue() {
			summary.EntriesIncluded++
		} else {
			summary.EntriesExcluded++
		}
	}
}
