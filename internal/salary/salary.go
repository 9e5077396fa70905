package salary

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"devsurvey/internal/cache"
	"devsurvey/internal/config"
	"devsurvey/internal/frame"
	"devsurvey/internal/logger"
)

// ErrNoData is returned when no job produced a salary table.
var ErrNoData = errors.New("no salary data was extracted")

// Job pairs a salary page suffix with the title written into the table.
type Job struct {
	Slug  string
	Title string
}

// URL returns the job's salary page under baseURL.
func (j Job) URL(baseURL string) string {
	return baseURL + j.Slug
}

// JobsFromConfig converts configured jobs.
func JobsFromConfig(cfg []config.JobConfig) []Job {
	jobs := make([]Job, len(cfg))
	for i, j := range cfg {
		jobs[i] = Job{Slug: j.Slug, Title: j.Title}
	}

	return jobs
}

// TableFetcher returns the salary table on a page, tagged with a job title.
type TableFetcher interface {
	FetchSalaryTable(ctx context.Context, url, title string) (dataframe.DataFrame, error)
}

// Pipeline scrapes, cleans and caches the salary table.
type Pipeline struct {
	baseURL string
	jobs    []Job
	fetcher TableFetcher
	cache   *cache.Manager
	logger  *logger.Logger
}

// NewPipeline creates a salary pipeline from configuration.
func NewPipeline(cfg *config.Config, fetcher TableFetcher, cm *cache.Manager, log *logger.Logger) *Pipeline {
	return &Pipeline{
		baseURL: cfg.Salaries.BaseURL,
		jobs:    JobsFromConfig(cfg.Salaries.Jobs),
		fetcher: fetcher,
		cache:   cm,
		logger:  log.Component("salary"),
	}
}

// ProcessJobs fetches each job's table in order and stacks them. Jobs that
// fail are logged and skipped.
func (p *Pipeline) ProcessJobs(ctx context.Context, jobs []Job) (dataframe.DataFrame, error) {
	var (
		frames []dataframe.DataFrame
		failed []error
	)

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return dataframe.DataFrame{}, err
		}

		url := job.URL(p.baseURL)

		df, err := p.fetcher.FetchSalaryTable(ctx, url, job.Title)
		if err != nil {
			p.logger.Warn("Failed to extract salary table", "job", job.Title, "url", url, "error", err)
			failed = append(failed, fmt.Errorf("%s: %w", job.Title, err))

			continue
		}

		p.logger.Info("Extracted salary table", "job", job.Title, "rows", df.Nrow())
		frames = append(frames, df)
	}

	if len(frames) == 0 {
		return dataframe.DataFrame{}, errors.Join(append([]error{ErrNoData}, failed...)...)
	}

	return frame.Concat(frames)
}

// Build scrapes every configured job, cleans the result, adds state
// abbreviations and salary tiers, and saves the salaries snapshot.
func (p *Pipeline) Build(ctx context.Context) (dataframe.DataFrame, error) {
	df, err := p.ProcessJobs(ctx, p.jobs)
	if err != nil {
		return df, err
	}

	steps := []struct {
		name string
		fn   func(dataframe.DataFrame) (dataframe.DataFrame, error)
	}{
		{"clean", Clean},
		{"state abbreviations", AddStateAbbreviation},
		{"salary tiers", AddSalaryTier},
	}

	for _, s := range steps {
		if df, err = s.fn(df); err != nil {
			return df, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	if err := p.cache.Save(cache.Salaries, df); err != nil {
		return df, err
	}

	p.logger.Info("Salary table built", "rows", df.Nrow(), "jobs", len(p.jobs))

	return df, nil
}

// Load returns the cached salaries snapshot.
func (p *Pipeline) Load() (dataframe.DataFrame, error) {
	return p.cache.Load(cache.Salaries)
}
