package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
)

// chunkSize is the fixed transfer buffer size (8 KiB).
const chunkSize = 8 << 10

// HTTPDownloader streams archives over HTTP
type HTTPDownloader struct {
	client    *http.Client
	userAgent string
	logger    *log.Logger
}

// DownloaderOption configures an HTTPDownloader
type DownloaderOption func(*HTTPDownloader)

// WithDownloaderClient sets a custom HTTP client
func WithDownloaderClient(c *http.Client) DownloaderOption {
	return func(d *HTTPDownloader) {
		d.client = c
	}
}

// WithDownloaderUserAgent sets the User-Agent header
func WithDownloaderUserAgent(ua string) DownloaderOption {
	return func(d *HTTPDownloader) {
		if ua != "" {
			d.userAgent = ua
		}
	}
}

// WithDownloaderLogger sets the logger for transfer diagnostics
func WithDownloaderLogger(l *log.Logger) DownloaderOption {
	return func(d *HTTPDownloader) {
		d.logger = l
	}
}

// NewHTTPDownloader creates a new HTTP downloader.
// Only the wait for response headers is time-bounded; the body may stream for as long as it takes.
func NewHTTPDownloader(opts ...DownloaderOption) *HTTPDownloader {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = DefaultTimeout

	d := &HTTPDownloader{
		client:    &http.Client{Transport: transport},
		userAgent: DefaultUserAgent,
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download streams task.SourceURL into task.DestinationPath.
//
// onProgress is called after every chunk write with the cumulative byte
// count and the declared Content-Length (-1 when the server sent none).
// Every failure is reported as a *NetworkError. A partially written file is
// left in place.
func (d *HTTPDownloader) Download(ctx context.Context, task TransferTask, onProgress TransferProgressFunc) error {
	fail := func(err error) error {
		return &NetworkError{Op: "download", URL: task.SourceURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, task.SourceURL, http.NoBody)
	if err != nil {
		return fail(err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{Op: "download", URL: task.SourceURL, StatusCode: resp.StatusCode}
	}

	total := resp.ContentLength
	if total < 0 && task.ExpectedSize > 0 {
		total = task.ExpectedSize
	}

	out, err := os.OpenFile(task.DestinationPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fail(fmt.Errorf("creating %s: %w", task.DestinationPath, err))
	}

	written, copyErr := copyWithProgress(out, resp.Body, total, onProgress)
	closeErr := out.Close()
	if copyErr != nil {
		return fail(copyErr)
	}
	if closeErr != nil {
		return fail(fmt.Errorf("closing %s: %w", task.DestinationPath, closeErr))
	}

	d.logger.Debug("download complete", "url", redactURL(task.SourceURL), "bytes", written)
	return nil
}

// copyWithProgress copies src to dst through a fixed buffer, reporting after each write
func copyWithProgress(dst io.Writer, src io.Reader, total int64, onProgress TransferProgressFunc) (int64, error) {
	buf := make([]byte, chunkSize)
	var done int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return done, fmt.Errorf("writing: %w", err)
			}
			done += int64(n)
			if onProgress != nil {
				onProgress(done, total)
			}
		}
		if readErr == io.EOF {
			return done, nil
		}
		if readErr != nil {
			return done, fmt.Errorf("reading: %w", readErr)
		}
	}
}
