package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxResponseBytes = 4 * 1024 * 1024

// httpTransport wraps an http.Client with a per-host token-bucket rate
// limiter. Both source scanners get their own instance so one source's
// limiter state never bleeds into the other's.
type httpTransport struct {
	client     *http.Client
	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
	perHostRPS rate.Limit
}

func newHTTPTransport(timeout time.Duration, perHostRPS float64) *httpTransport {
	return &httpTransport{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		limiters:   make(map[string]*rate.Limiter),
		perHostRPS: rate.Limit(perHostRPS),
	}
}

func (t *httpTransport) limiter(host string) *rate.Limiter {
	t.limitersMu.Lock()
	defer t.limitersMu.Unlock()

	if l, ok := t.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(t.perHostRPS, 1)
	t.limiters[host] = l
	return l
}

// do executes one request after the host limiter admits it, and reads
// the complete (size-bounded) body. The caller owns status handling;
// no retries happen here; a failed query is a failed query.
func (t *httpTransport) do(ctx context.Context, req *http.Request) (*http.Response, []byte, error) {
	if err := t.limiter(req.URL.Host).Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := t.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp, nil, fmt.Errorf("read response body: %w", err)
	}

	return resp, body, nil
}
