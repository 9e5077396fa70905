package crawler

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-gota/gota/dataframe"

	"devsurvey/internal/config"
	"devsurvey/internal/frame"
	"devsurvey/internal/logger"
)

// JobTitleColumn is appended to every scraped salary table.
const JobTitleColumn = "Job Title"

// ErrUnknownFetchMode is returned by NewFetcher for an unsupported mode.
var ErrUnknownFetchMode = errors.New("unknown fetch mode")

// NewFetcher picks the page fetcher configured for salary pages.
func NewFetcher(cfg *config.Config, log *logger.Logger) (PageFetcher, error) {
	switch cfg.Salaries.FetchMode {
	case config.FetchBrowser:
		return NewBrowserFetcher(cfg.Salaries.Browser, log), nil
	case config.FetchHTTP:
		return NewHTTPFetcher(&cfg.Retry, log), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFetchMode, cfg.Salaries.FetchMode)
	}
}

// Client composes a page fetcher with the salary table parser.
type Client struct {
	fetcher PageFetcher
	logger  *logger.Logger
}

// NewClient creates a client over fetcher.
func NewClient(fetcher PageFetcher, log *logger.Logger) *Client {
	return &Client{
		fetcher: fetcher,
		logger:  log.Component("crawler"),
	}
}

// FetchSalaryTable fetches url and returns its salary table with a
// Job Title column set to title.
func (c *Client) FetchSalaryTable(ctx context.Context, url, title string) (dataframe.DataFrame, error) {
	html, err := c.fetcher.FetchHTML(ctx, url)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to fetch page: %w", err)
	}

	table, err := ParseSalaryTable(html)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	df, err := table.Frame()
	if err != nil {
		return df, err
	}

	df, err = frame.Mutate(df, frame.ConstSeries(JobTitleColumn, title, df.Nrow()))
	if err != nil {
		return df, err
	}

	c.logger.Debug("Parsed salary table", "url", url, "rows", df.Nrow(), "cols", df.Ncol())

	return df, nil
}

// Close releases the fetcher when it holds resources.
func (c *Client) Close() error {
	if closer, ok := c.fetcher.(interface{ Close() error }); ok {
		return closer.Close()
	}

	return nil
}
