package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"

	"devsurvey/internal/config"
	"devsurvey/internal/logger"
)

// Downloader streams remote files. Survey exports run to hundreds of
// megabytes, so the body is handed to the caller unread.
type Downloader struct {
	client *resty.Client
	logger *logger.Logger
}

// NewDownloader creates a downloader with the given retry policy. The
// policy timeout is not applied: it would cut off long transfers.
func NewDownloader(retryPolicy *config.RetryPolicy, log *logger.Logger) *Downloader {
	client := newRestyClient(retryPolicy).SetTimeout(0)

	return &Downloader{
		client: client,
		logger: log.Component("downloader"),
	}
}

// Open starts a GET for url and returns the response body. The caller closes it.
func (d *Downloader) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}

	body := resp.RawBody()

	if resp.StatusCode() != http.StatusOK {
		if body != nil {
			_ = body.Close()
		}

		return nil, fmt.Errorf("download %s: %w: %d", url, ErrUnexpectedStatusCode, resp.StatusCode())
	}

	d.logger.Debug("Download started", "url", url, "content_length", resp.RawResponse.ContentLength)

	return body, nil
}
