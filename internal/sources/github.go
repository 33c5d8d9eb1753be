package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mlevkin/leakradar/internal/models"
)

// DefaultGitHubBaseURL is the production GitHub REST endpoint.
const DefaultGitHubBaseURL = "https://api.github.com"

const githubResultsPerQuery = 5

// GitHubScanner executes code-search payloads against the GitHub API.
// A short-lived result cache avoids re-querying the same domain with
// the same token within the cache TTL.
type GitHubScanner struct {
	baseURL   string
	token     string
	transport *httpTransport
	cache     *resultCache
	newDelay  func() *delayPolicy
	now       func() time.Time
}

// NewGitHub creates a scanner. An empty baseURL selects the production
// endpoint; tests point it at a local server.
func NewGitHub(baseURL, token string) *GitHubScanner {
	if baseURL == "" {
		baseURL = DefaultGitHubBaseURL
	}
	return &GitHubScanner{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		token:     token,
		transport: newHTTPTransport(defaultCallTimeout, 2),
		cache:     newResultCache(),
		newDelay:  defaultDelayPolicy,
		now:       time.Now,
	}
}

// Source implements Scanner.
func (s *GitHubScanner) Source() models.Source { return models.SourceGitHub }

// Scan runs the payloads in order with an adaptive inter-query delay.
// A rate-limit signal stops the remaining payloads; any other per-query
// failure is counted and skipped. The result is cached per domain+token.
func (s *GitHubScanner) Scan(ctx context.Context, domain string, payloads []models.QueryPayload) *Result {
	key := cacheKey(domain, s.token)
	if cached, ok := s.cache.get(key); ok {
		return cached
	}

	result := &Result{Stats: models.SourceStats{Queries: len(payloads)}}
	delay := s.newDelay()

	for i, payload := range payloads {
		if i > 0 {
			if err := delay.wait(ctx); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		findings, err := s.search(ctx, payload)
		if err != nil {
			if err == ErrRateLimited {
				result.Stats.RateLimited = true
				break
			}
			result.Stats.Failed++
			continue
		}

		result.Stats.Succeeded++
		result.Findings = append(result.Findings, findings...)
	}

	if len(result.Findings) == 0 && result.Stats.Succeeded > 0 {
		result.Findings = append(result.Findings, noExposureFinding(models.SourceGitHub, domain, s.now()))
	}

	s.cache.put(key, result)
	return result
}

// githubSearchResponse is the subset of the code-search reply we read.
// Text match fragments require the text-match media type.
type githubSearchResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Name       string `json:"name"`
		Path       string `json:"path"`
		HTMLURL    string `json:"html_url"`
		Repository struct {
			FullName string `json:"full_name"`
		} `json:"repository"`
		TextMatches []struct {
			Fragment string `json:"fragment"`
		} `json:"text_matches"`
	} `json:"items"`
}

func (s *GitHubScanner) search(ctx context.Context, payload models.QueryPayload) ([]models.Finding, error) {
	endpoint := fmt.Sprintf("%s/search/code?q=%s&per_page=%d",
		s.baseURL, url.QueryEscape(payload.Query), githubResultsPerQuery)

	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/vnd.github.text-match+json")

	resp, body, err := s.transport.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("github search: %w", err)
	}

	if isGitHubRateLimit(resp) {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github search: HTTP %d", resp.StatusCode)
	}

	var parsed githubSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode github response: %w", err)
	}

	var findings []models.Finding
	for _, item := range parsed.Items {
		snippet := ""
		if len(item.TextMatches) > 0 {
			snippet = item.TextMatches[0].Fragment
		}
		severity, confidence := classify(item.Path + " " + snippet)
		title := item.Repository.FullName + "/" + item.Path
		if snippet == "" {
			snippet = fmt.Sprintf("Matched file %s in repository %s", item.Path, item.Repository.FullName)
		}
		findings = append(findings, models.Finding{
			ID:             uuid.NewString(),
			Source:         models.SourceGitHub,
			URL:            item.HTMLURL,
			Title:          title,
			Snippet:        snippet,
			Severity:       severity,
			Recommendation: recommendationFor(severity),
			Confidence:     confidence,
			Query:          payload.Query,
			FoundAt:        s.now(),
		})
	}

	return findings, nil
}

// isGitHubRateLimit covers both the secondary-limit 429 and the
// primary-limit 403 with an exhausted remaining counter.
func isGitHubRateLimit(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return resp.StatusCode == http.StatusForbidden &&
		resp.Header.Get("X-RateLimit-Remaining") == "0"
}
