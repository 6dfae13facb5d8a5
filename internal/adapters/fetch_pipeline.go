package adapters

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"repo-mirror/internal/ports"
	"repo-mirror/internal/shared"
	"repo-mirror/internal/types"
)

const defaultFetchConcurrency = 5
const defaultHTTPTimeout = 60 * time.Second
const defaultUserAgent = "repo-mirror"

// maxPreallocBytes caps how much of an announced Content-Length is reserved
// up front. Larger bodies still download; the buffer grows as bytes arrive.
const maxPreallocBytes = 64 << 20

type HTTPFetchPipeline struct {
	Client      *http.Client
	Concurrency int
	UserAgent   string
	Observer    ports.ProgressObserver
}

func NewHTTPFetchPipeline(concurrency int, timeoutSec int, userAgent string, observer ports.ProgressObserver) HTTPFetchPipeline {
	if observer == nil {
		observer = NopProgressObserver{}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return HTTPFetchPipeline{
		Client:      &http.Client{Timeout: normalizeHTTPTimeout(timeoutSec)},
		Concurrency: normalizeFetchConcurrency(concurrency),
		UserAgent:   userAgent,
		Observer:    observer,
	}
}

func normalizeFetchConcurrency(value int) int {
	if value <= 0 {
		return defaultFetchConcurrency
	}
	return value
}

func normalizeHTTPTimeout(value int) time.Duration {
	timeout := time.Duration(value) * time.Second
	if timeout <= 0 {
		return defaultHTTPTimeout
	}
	return timeout
}

// FetchAll downloads every source with at most Concurrency transfers in
// flight and returns one result per source in completion order. A failed
// source never cancels or delays the others.
func (p HTTPFetchPipeline) FetchAll(ctx context.Context, sources []types.SourceDescriptor) []types.FetchResult {
	if len(sources) == 0 {
		return []types.FetchResult{}
	}
	results := make(chan types.FetchResult, len(sources))
	var group errgroup.Group
	group.SetLimit(normalizeFetchConcurrency(p.Concurrency))
	for _, source := range sources {
		group.Go(func() error {
			results <- p.fetchOne(ctx, source)
			return nil
		})
	}
	_ = group.Wait()
	close(results)

	collected := make([]types.FetchResult, 0, len(sources))
	for result := range results {
		collected = append(collected, result)
	}
	return collected
}

func (p HTTPFetchPipeline) fetchOne(ctx context.Context, source types.SourceDescriptor) types.FetchResult {
	observer := p.observer()
	data, err := p.download(ctx, source.URL, observer)
	observer.TransferFinished(source.URL, err)
	if err != nil {
		log.Ctx(ctx).Warn().Str("source", source.URL).Err(err).Msg("transfer failed")
		return types.FetchResult{Source: source, Err: err}
	}
	log.Ctx(ctx).Debug().Str("source", source.URL).Int("bytes", len(data)).Msg("transfer completed")
	return types.FetchResult{Source: source, Data: data}
}

func (p HTTPFetchPipeline) download(ctx context.Context, url string, observer ports.ProgressObserver) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.TransferError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", p.userAgent())
	// The index is already compressed; transparent decoding would hand the
	// decompressor plain text.
	req.Header.Set("Accept-Encoding", "identity")
	resp, err := p.client().Do(req)
	if err != nil {
		return nil, &types.TransferError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &types.TransferError{
			URL:    url,
			Status: resp.StatusCode,
			Err:    shared.HTTPStatusError(resp.StatusCode, url),
		}
	}

	observer.TransferStarted(url, resp.ContentLength)
	counter := &progressCounter{
		progress: types.TransferProgress{Source: url, Total: resp.ContentLength},
		observer: observer,
	}
	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(min(resp.ContentLength, maxPreallocBytes)))
	}
	if _, err := io.Copy(io.MultiWriter(&buf, counter), resp.Body); err != nil {
		return nil, &types.TransferError{URL: url, Status: resp.StatusCode, Err: err}
	}
	return buf.Bytes(), nil
}

func (p HTTPFetchPipeline) client() *http.Client {
	if p.Client == nil {
		return &http.Client{Timeout: defaultHTTPTimeout}
	}
	return p.Client
}

func (p HTTPFetchPipeline) userAgent() string {
	if p.UserAgent == "" {
		return defaultUserAgent
	}
	return p.UserAgent
}

func (p HTTPFetchPipeline) observer() ports.ProgressObserver {
	if p.Observer == nil {
		return NopProgressObserver{}
	}
	return p.Observer
}

// progressCounter is owned by a single transfer; only snapshots of its
// counter leave the goroutine.
type progressCounter struct {
	progress types.TransferProgress
	observer ports.ProgressObserver
}

func (c *progressCounter) Write(p []byte) (int, error) {
	c.progress.Received += int64(len(p))
	c.observer.TransferProgressed(c.progress)
	return len(p), nil
}

var _ ports.FetchPipelinePort = HTTPFetchPipeline{}
