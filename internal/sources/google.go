package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mlevkin/leakradar/internal/models"
	"golang.org/x/sync/errgroup"
)

// DefaultGoogleBaseURL is the production Custom Search endpoint.
const DefaultGoogleBaseURL = "https://www.googleapis.com/customsearch/v1"

const (
	googleResultsPerQuery = 5

	// googleConcurrency is the bounded in-flight request pool, local to
	// this scanner. The adaptive delay still paces dispatch; the pool
	// only lets slow responses overlap.
	googleConcurrency = 3
)

// GoogleScanner executes web-search payloads against the Google Custom
// Search API with a small bounded worker pool.
type GoogleScanner struct {
	baseURL   string
	key       string
	cx        string
	transport *httpTransport
	newDelay  func() *delayPolicy
	now       func() time.Time
}

// NewGoogle creates a scanner. An empty baseURL selects the production
// endpoint; tests point it at a local server.
func NewGoogle(baseURL, key, cx string) *GoogleScanner {
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	return &GoogleScanner{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		key:       key,
		cx:        cx,
		transport: newHTTPTransport(defaultCallTimeout, 2),
		newDelay:  defaultDelayPolicy,
		now:       time.Now,
	}
}

// Source implements Scanner.
func (s *GoogleScanner) Source() models.Source { return models.SourceGoogle }

// Scan runs the payloads through a pool of at most googleConcurrency
// in-flight requests. Dispatch is paced by the adaptive inter-query
// delay; the pool only overlaps slow responses. A rate-limit signal
// stops new payloads from being issued; in-flight ones finish. Findings
// keep payload order regardless of completion order.
func (s *GoogleScanner) Scan(ctx context.Context, domain string, payloads []models.QueryPayload) *Result {
	result := &Result{Stats: models.SourceStats{Queries: len(payloads)}}

	perPayload := make([][]models.Finding, len(payloads))

	var stopped atomic.Bool
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(googleConcurrency)

	delay := s.newDelay()

	for i, payload := range payloads {
		if i > 0 {
			if err := delay.wait(gctx); err != nil {
				break
			}
		}
		if stopped.Load() || gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if stopped.Load() {
				return nil
			}

			findings, err := s.search(gctx, payload)
			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == ErrRateLimited:
				stopped.Store(true)
				result.Stats.RateLimited = true
			case err != nil:
				result.Stats.Failed++
			default:
				result.Stats.Succeeded++
				perPayload[i] = findings
			}
			return nil
		})
	}

	_ = g.Wait()

	for _, findings := range perPayload {
		result.Findings = append(result.Findings, findings...)
	}

	if len(result.Findings) == 0 && result.Stats.Succeeded > 0 {
		result.Findings = append(result.Findings, noExposureFinding(models.SourceGoogle, domain, s.now()))
	}

	return result
}

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (s *GoogleScanner) search(ctx context.Context, payload models.QueryPayload) ([]models.Finding, error) {
	params := url.Values{}
	params.Set("key", s.key)
	params.Set("cx", s.cx)
	params.Set("q", payload.Query)
	params.Set("num", fmt.Sprintf("%d", googleResultsPerQuery))

	req, err := http.NewRequest("GET", s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, body, err := s.transport.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("google search: %w", err)
	}

	if isGoogleRateLimit(resp, body) {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google search: HTTP %d", resp.StatusCode)
	}

	var parsed googleSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode google response: %w", err)
	}

	var findings []models.Finding
	for _, item := range parsed.Items {
		severity, confidence := classify(item.Title + " " + item.Snippet)
		findings = append(findings, models.Finding{
			ID:             uuid.NewString(),
			Source:         models.SourceGoogle,
			URL:            item.Link,
			Title:          item.Title,
			Snippet:        item.Snippet,
			Severity:       severity,
			Recommendation: recommendationFor(severity),
			Confidence:     confidence,
			Query:          payload.Query,
			FoundAt:        s.now(),
		})
	}

	return findings, nil
}

// isGoogleRateLimit covers the 429 and the daily-quota 403 whose body
// carries a rateLimitExceeded / dailyLimitExceeded reason.
func isGoogleRateLimit(resp *http.Response, body []byte) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	text := strings.ToLower(string(body))
	return strings.Contains(text, "ratelimitexceeded") || strings.Contains(text, "dailylimitexceeded")
}
