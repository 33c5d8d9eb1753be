// Package credcheck probes supplied API credentials against their
// services. One lightweight authenticated call per credential, no
// retries; a failed probe is definitive for that scan.
package credcheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mlevkin/leakradar/internal/models"
	"github.com/mlevkin/leakradar/internal/validate"
)

// Default production endpoints, overridable for tests.
const (
	DefaultGitHubBaseURL = "https://api.github.com"
	DefaultGoogleBaseURL = "https://www.googleapis.com/customsearch/v1"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
)

const probeTimeout = 10 * time.Second

// Checker validates credentials by probing their services.
type Checker struct {
	githubBaseURL string
	googleBaseURL string
	openAIBaseURL string
	httpClient    *http.Client
}

// Option overrides a Checker default.
type Option func(*Checker)

// WithGitHubBaseURL points the GitHub probe at a different endpoint.
func WithGitHubBaseURL(u string) Option {
	return func(c *Checker) { c.githubBaseURL = strings.TrimSuffix(u, "/") }
}

// WithGoogleBaseURL points the Google probe at a different endpoint.
func WithGoogleBaseURL(u string) Option {
	return func(c *Checker) { c.googleBaseURL = strings.TrimSuffix(u, "/") }
}

// WithOpenAIBaseURL points the OpenAI probe at a different endpoint.
func WithOpenAIBaseURL(u string) Option {
	return func(c *Checker) { c.openAIBaseURL = strings.TrimSuffix(u, "/") }
}

// New creates a Checker with production endpoints.
func New(opts ...Option) *Checker {
	c := &Checker{
		githubBaseURL: DefaultGitHubBaseURL,
		googleBaseURL: DefaultGoogleBaseURL,
		openAIBaseURL: DefaultOpenAIBaseURL,
		httpClient:    &http.Client{Timeout: probeTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Statuses holds the probe outcome per credential label.
type Statuses map[string]models.CredentialStatus

// Valid reports whether the labeled credential probed as valid.
func (s Statuses) Valid(label string) bool {
	return s[label].Valid
}

// Check probes every populated credential independently; one probe's
// failure never blocks another. Unset credentials are reported as not
// provided without any network call.
func (c *Checker) Check(ctx context.Context, creds models.Credentials) Statuses {
	statuses := Statuses{
		models.LabelGitHub:    {Label: models.LabelGitHub},
		models.LabelGoogleKey: {Label: models.LabelGoogleKey},
		models.LabelGoogleCX:  {Label: models.LabelGoogleCX},
		models.LabelOpenAI:    {Label: models.LabelOpenAI},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	set := func(label string, st models.CredentialStatus) {
		mu.Lock()
		defer mu.Unlock()
		st.Label = label
		statuses[label] = st
	}

	if creds.HasGitHub() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set(models.LabelGitHub, c.probeGitHub(ctx, creds.GitHubToken))
		}()
	}

	if creds.GoogleKey != "" || creds.GoogleCX != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keySt, cxSt := c.probeGoogle(ctx, creds.GoogleKey, creds.GoogleCX)
			set(models.LabelGoogleKey, keySt)
			set(models.LabelGoogleCX, cxSt)
		}()
	}

	if creds.HasOpenAI() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set(models.LabelOpenAI, c.probeOpenAI(ctx, creds.OpenAIKey))
		}()
	}

	wg.Wait()
	return statuses
}

// probeGitHub issues the minimal identity lookup.
func (c *Checker) probeGitHub(ctx context.Context, token string) models.CredentialStatus {
	st := models.CredentialStatus{Provided: true}

	if err := validate.GitHubToken(token); err != nil {
		st.Reason = err.Error()
		return st
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.githubBaseURL+"/user", nil)
	if err != nil {
		st.Reason = err.Error()
		return st
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		st.Reason = fmt.Sprintf("network error: %v", err)
		return st
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		st.Valid = true
	case resp.StatusCode == http.StatusUnauthorized:
		st.Reason = "token rejected (unauthorized)"
	case resp.StatusCode == http.StatusForbidden:
		st.Reason = "token rejected or rate limit exhausted"
	default:
		st.Reason = fmt.Sprintf("unexpected response: HTTP %d", resp.StatusCode)
	}
	return st
}

// probeGoogle issues a single 1-result search; both the key and engine
// id are exercised by the same call, so they share one probe.
func (c *Checker) probeGoogle(ctx context.Context, key, cx string) (models.CredentialStatus, models.CredentialStatus) {
	keySt := models.CredentialStatus{Provided: key != ""}
	cxSt := models.CredentialStatus{Provided: cx != ""}

	if key == "" {
		cxSt.Reason = "search key missing, engine id not probed"
		return keySt, cxSt
	}
	if cx == "" {
		keySt.Reason = "engine id missing, key not probed"
		return keySt, cxSt
	}
	if err := validate.GoogleKey(key); err != nil {
		keySt.Reason = err.Error()
		cxSt.Reason = "key format invalid, engine id not probed"
		return keySt, cxSt
	}

	params := url.Values{}
	params.Set("key", key)
	params.Set("cx", cx)
	params.Set("q", "test")
	params.Set("num", "1")

	req, err := http.NewRequestWithContext(ctx, "GET", c.googleBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		keySt.Reason = err.Error()
		return keySt, cxSt
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		keySt.Reason = fmt.Sprintf("network error: %v", err)
		cxSt.Reason = keySt.Reason
		return keySt, cxSt
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		keySt.Valid = true
		cxSt.Valid = true
	case http.StatusBadRequest:
		// A bad engine id produces 400 with a valid key.
		keySt.Valid = true
		cxSt.Reason = "engine id rejected"
	case http.StatusForbidden, http.StatusTooManyRequests:
		keySt.Reason = "key rejected or quota exhausted"
		cxSt.Reason = keySt.Reason
	default:
		keySt.Reason = fmt.Sprintf("unexpected response: HTTP %d", resp.StatusCode)
		cxSt.Reason = keySt.Reason
	}
	return keySt, cxSt
}

// probeOpenAI issues the cheapest authenticated call, a model listing.
func (c *Checker) probeOpenAI(ctx context.Context, key string) models.CredentialStatus {
	st := models.CredentialStatus{Provided: true}

	if err := validate.OpenAIKey(key); err != nil {
		st.Reason = err.Error()
		return st
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.openAIBaseURL+"/models", nil)
	if err != nil {
		st.Reason = err.Error()
		return st
	}
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		st.Reason = fmt.Sprintf("network error: %v", err)
		return st
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		st.Valid = true
	case http.StatusUnauthorized:
		st.Reason = "key rejected (unauthorized)"
	case http.StatusTooManyRequests:
		st.Reason = "quota exhausted"
	default:
		st.Reason = fmt.Sprintf("unexpected response: HTTP %d", resp.StatusCode)
	}
	return st
}
