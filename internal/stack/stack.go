// Package stack builds the merged developer-survey tables: one raw table with
// every year in the canonical schema, and a wide table with feature columns.
package stack

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/errgroup"

	"devsurvey/internal/cache"
	"devsurvey/internal/config"
	"devsurvey/internal/features"
	"devsurvey/internal/frame"
	"devsurvey/internal/logger"
	"devsurvey/internal/normalizer"
	"devsurvey/internal/regroup"
)

// ErrNoYears is returned when no year could be loaded.
var ErrNoYears = errors.New("no survey year could be loaded")

// Pipeline merges survey years and derives the wide table.
type Pipeline struct {
	years       []int
	concurrency int
	features    config.FeaturesConfig
	source      Source
	processor   *normalizer.Processor
	cache       *cache.Manager
	logger      *logger.Logger
}

// NewPipeline creates a survey pipeline from configuration.
func NewPipeline(cfg *config.Config, source Source, cm *cache.Manager, log *logger.Logger) *Pipeline {
	concurrency := cfg.Stack.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Pipeline{
		years:       cfg.Stack.Years,
		concurrency: concurrency,
		features:    cfg.Features,
		source:      source,
		processor:   normalizer.NewProcessor(),
		cache:       cm,
		logger:      log.Component("stack"),
	}
}

func (p *Pipeline) loadYear(ctx context.Context, year int) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	rc, err := p.source.Open(ctx, year)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer rc.Close()

	raw, err := frame.ReadCSV(rc, nil)
	if err != nil {
		return raw, err
	}

	p.logger.Debug("Loaded survey", "year", year, "rows", raw.Nrow(), "cols", raw.Ncol())

	return p.processor.Process(year, raw)
}

// MergeYears loads, normalizes and stacks the given years in order, then adds
// the average columns. Years that fail are logged and left out.
func (p *Pipeline) MergeYears(ctx context.Context, years []int) (dataframe.DataFrame, error) {
	p.logger.Info("Starting merge", "years", years, "concurrency", p.concurrency)

	results := make([]*dataframe.DataFrame, len(years))
	failures := make([]error, len(years))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, year := range years {
		g.Go(func() error {
			df, err := p.loadYear(gctx, year)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}

				p.logger.Warn("Skipping year", "year", year, "location", p.source.Location(year), "error", err)
				failures[i] = fmt.Errorf("%d: %w", year, err)

				return nil
			}

			results[i] = &df

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return dataframe.DataFrame{}, err
	}

	var frames []dataframe.DataFrame

	for _, df := range results {
		if df != nil {
			frames = append(frames, *df)
		}
	}

	p.logger.Info("Valid years", "loaded", len(frames), "requested", len(years))

	if len(frames) == 0 {
		return dataframe.DataFrame{}, errors.Join(append([]error{ErrNoYears}, failures...)...)
	}

	merged, err := frame.Concat(frames)
	if err != nil {
		return merged, err
	}

	raw, err := normalizer.AddAverages(merged)
	if err != nil {
		return raw, err
	}

	raw = raw.Select(normalizer.RawColumns())

	return raw, raw.Err
}

// Widen adds the language, database and platform columns, regroups the
// categorical answers and adds the list columns, in that order.
func (p *Pipeline) Widen(raw dataframe.DataFrame) (dataframe.DataFrame, error) {
	vectors := []struct {
		col    string
		values []string
	}{
		{normalizer.ColLanguageWorkedWith, p.features.Languages},
		{normalizer.ColDatabaseWorkedWith, p.features.Databases},
		{normalizer.ColPlatformWorkedWith, p.features.Platforms},
	}

	wide := raw

	var err error

	for _, v := range vectors {
		if wide, err = features.ExtractVector(wide, v.col, v.values); err != nil {
			return wide, fmt.Errorf("extract %s: %w", v.col, err)
		}
	}

	if wide, err = regroup.Apply(wide); err != nil {
		return wide, err
	}

	for _, l := range p.features.ListColumns {
		if wide, err = features.ExtractList(wide, l.Source, l.Name, l.Terms); err != nil {
			return wide, fmt.Errorf("extract %s: %w", l.Name, err)
		}
	}

	return wide, nil
}

// Build deletes the raw and wide snapshots, merges every configured year and
// saves both tables. It returns the wide table.
func (p *Pipeline) Build(ctx context.Context) (dataframe.DataFrame, error) {
	for _, stage := range []cache.Stage{cache.Raw, cache.Wide} {
		if err := p.cache.Remove(stage); err != nil {
			return dataframe.DataFrame{}, err
		}
	}

	raw, err := p.MergeYears(ctx, p.years)
	if err != nil {
		return raw, err
	}

	if err := p.cache.Save(cache.Raw, raw); err != nil {
		return raw, err
	}

	return p.widenAndSave(raw)
}

func (p *Pipeline) widenAndSave(raw dataframe.DataFrame) (dataframe.DataFrame, error) {
	wide, err := p.Widen(raw)
	if err != nil {
		return wide, err
	}

	if err := p.cache.Save(cache.Wide, wide); err != nil {
		return wide, err
	}

	return wide, nil
}

// Get returns the wide table. With loadFromCache it uses the wide snapshot,
// else widens the raw snapshot, and only then rebuilds from the sources.
func (p *Pipeline) Get(ctx context.Context, loadFromCache bool) (dataframe.DataFrame, error) {
	if loadFromCache {
		if p.cache.Exists(cache.Wide) {
			return p.cache.Load(cache.Wide)
		}

		if p.cache.Exists(cache.Raw) {
			p.logger.Info("Wide snapshot missing, widening raw snapshot")

			raw, err := p.cache.Load(cache.Raw)
			if err != nil {
				return raw, err
			}

			return p.widenAndSave(raw)
		}
	}

	return p.Build(ctx)
}

// Load returns the raw or wide snapshot.
func (p *Pipeline) Load(stage cache.Stage) (dataframe.DataFrame, error) {
	if stage != cache.Raw && stage != cache.Wide {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s is not a survey stage", cache.ErrUnknownStage, stage)
	}

	return p.cache.Load(stage)
}
