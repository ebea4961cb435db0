package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bigearthnet-go/bencommon/internal/errors"
	"github.com/bigearthnet-go/bencommon/internal/httpclient"
	"github.com/bigearthnet-go/bencommon/internal/logger"
	"github.com/bigearthnet-go/bencommon/internal/observability/metrics"
)

// maxParallelDownloads bounds FetchAll.
const maxParallelDownloads = 4

// Fetcher downloads files into a cache directory. A file that already exists
// is only downloaded again when forced.
type Fetcher struct {
	dir      string
	client   *httpclient.Client
	recorder metrics.Recorder
	log      logger.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *httpclient.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithFetchMetrics records download operations.
func WithFetchMetrics(r metrics.Recorder) FetcherOption {
	return func(f *Fetcher) {
		if r != nil {
			f.recorder = r
		}
	}
}

// NewFetcher creates a fetcher writing into dir.
func NewFetcher(dir string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		dir:      dir,
		recorder: metrics.NopRecorder{},
		log:      logger.Global().Module("resource").Module("fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = httpclient.New(nil)
	}
	return f
}

// Dir returns the cache directory.
func (f *Fetcher) Dir() string { return f.dir }

// Fetch downloads rawURL into the cache directory under the base name of the
// URL path and returns the local path.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, force bool) (string, error) {
	name, err := fileNameOf(rawURL)
	if err != nil {
		return "", err
	}
	return f.FetchAs(ctx, rawURL, name, force)
}

// FetchAs downloads rawURL into the cache directory as name.
func (f *Fetcher) FetchAs(ctx context.Context, rawURL, name string, force bool) (string, error) {
	dest := filepath.Join(f.dir, name)
	if !force {
		if info, err := os.Stat(dest); err == nil && info.Size() > 0 {
			f.log.Debug("using cached file", logger.String("path", dest))
			f.recorder.RecordOperation(metrics.OpFetch, metrics.StatusSkipped)
			return dest, nil
		}
	}

	start := time.Now()
	n, err := f.download(ctx, rawURL, dest)
	f.recorder.RecordDuration(metrics.OpFetch, time.Since(start).Seconds())
	if err != nil {
		f.recorder.RecordOperation(metrics.OpFetch, metrics.StatusError)
		f.recorder.RecordError(metrics.OpFetch, string(categoryOf(err)))
		return "", err
	}

	f.recorder.RecordOperation(metrics.OpFetch, metrics.StatusSuccess)
	if b, ok := f.recorder.(interface{ AddFetchedBytes(int64) }); ok {
		b.AddFetchedBytes(n)
	}
	f.log.Info("downloaded",
		logger.String("url", rawURL),
		logger.String("path", dest),
		logger.Int64("bytes", n),
		logger.Duration("elapsed", time.Since(start)))
	return dest, nil
}

// FetchAll downloads several URLs concurrently and returns the local paths in
// input order. The first failure cancels the remaining downloads.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, force bool) ([]string, error) {
	paths := make([]string, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownloads)
	for i, u := range urls {
		g.Go(func() error {
			p, err := f.Fetch(gctx, u, force)
			paths[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// download writes to a temporary file next to dest and renames it once the
// body has been read completely.
func (f *Fetcher) download(ctx context.Context, rawURL, dest string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fileError(err, dest)
	}

	if err := ctx.Err(); err != nil {
		return 0, cancelled(err, rawURL)
	}
	resp, err := f.client.Get(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return 0, cancelled(err, rawURL)
		}
		return 0, errors.New(err).
			Component("resource").
			Category(errors.CategoryNetwork).
			Context("url", rawURL).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return 0, errors.Newf("download of %s failed with status %d", rawURL, resp.StatusCode).
			Component("resource").
			Category(errors.CategoryNetwork).
			Context("url", rawURL).
			Context("status_code", resp.StatusCode).
			Build()
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*")
	if err != nil {
		return 0, fileError(err, dest)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return 0, errors.New(fmt.Errorf("reading response body: %w", err)).
			Component("resource").
			Category(errors.CategoryNetwork).
			Context("url", rawURL).
			Build()
	}
	if err := tmp.Close(); err != nil {
		return 0, fileError(err, tmpName)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return 0, fileError(err, dest)
	}
	return n, nil
}

func fileNameOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err == nil && u.Scheme != "" && u.Host != "" {
		if name := path.Base(u.Path); name != "." && name != "/" && !strings.HasSuffix(u.Path, "/") {
			return name, nil
		}
	}
	return "", errors.Newf("cannot derive a file name from URL %q", rawURL).
		Component("resource").
		Category(errors.CategoryValidation).
		Context("url", rawURL).
		Build()
}

func cancelled(err error, rawURL string) error {
	return errors.New(err).
		Component("resource").
		Category(errors.CategoryCancellation).
		Context("url", rawURL).
		Build()
}

func fileError(err error, path string) error {
	return errors.New(err).
		Component("resource").
		Category(errors.CategoryFileIO).
		FileContext(path).
		Build()
}
