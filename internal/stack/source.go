package stack

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"devsurvey/internal/config"
	"devsurvey/internal/crawler"
	"devsurvey/internal/logger"
)

// SurveyFile is the export name inside each y={year} partition.
const SurveyFile = "survey_results_public.csv"

func partition(year int) string {
	return "y=" + strconv.Itoa(year)
}

// SourceURL returns the remote export location for year.
func SourceURL(prefix string, year int) string {
	return prefix + partition(year) + "/" + SurveyFile
}

// SourcePath returns the local export location for year.
func SourcePath(dir string, year int) string {
	return filepath.Join(dir, partition(year), SurveyFile)
}

// Source opens one year's survey export.
type Source interface {
	Open(ctx context.Context, year int) (io.ReadCloser, error)
	Location(year int) string
}

// RemoteSource streams exports over HTTP.
type RemoteSource struct {
	Prefix     string
	Downloader *crawler.Downloader
}

// Open implements Source.
func (s *RemoteSource) Open(ctx context.Context, year int) (io.ReadCloser, error) {
	return s.Downloader.Open(ctx, s.Location(year))
}

// Location implements Source.
func (s *RemoteSource) Location(year int) string {
	return SourceURL(s.Prefix, year)
}

// LocalSource reads exports laid out like the remote bucket.
type LocalSource struct {
	Dir string
}

// Open implements Source.
func (s *LocalSource) Open(_ context.Context, year int) (io.ReadCloser, error) {
	f, err := os.Open(s.Location(year))
	if err != nil {
		return nil, fmt.Errorf("failed to open survey for %d: %w", year, err)
	}

	return f, nil
}

// Location implements Source.
func (s *LocalSource) Location(year int) string {
	return SourcePath(s.Dir, year)
}

// NewSource returns the local source when a directory is configured and the
// remote one otherwise.
func NewSource(cfg *config.Config, log *logger.Logger) Source {
	if cfg.Stack.IsLocal() {
		return &LocalSource{Dir: cfg.Stack.LocalDir}
	}

	return &RemoteSource{
		Prefix:     cfg.Stack.URLPrefix,
		Downloader: crawler.NewDownloader(&cfg.Retry, log),
	}
}
