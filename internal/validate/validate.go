package validate

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MaxDomainLength caps the cleaned domain per RFC 1035.
	MaxDomainLength = 253

	maxLabelLength = 63
)

var (
	labelPattern     = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	githubTokenPat   = regexp.MustCompile(`^(gh[pousr]_[A-Za-z0-9_]{36,255}|github_pat_[A-Za-z0-9_]{22,255}|[0-9a-f]{40})$`)
	googleKeyPattern = regexp.MustCompile(`^AIza[0-9A-Za-z_-]{35}$`)
	googleCXPattern  = regexp.MustCompile(`^[0-9a-f]{10,21}(:[a-z0-9_-]+)?$`)
	openAIKeyPattern = regexp.MustCompile(`^sk-[A-Za-z0-9_-]{20,}$`)
)

// CleanDomain normalizes user input into a bare domain: strips scheme,
// leading "www.", path, query, port, and lowercases the result.
func CleanDomain(input string) string {
	d := strings.TrimSpace(strings.ToLower(input))

	if i := strings.Index(d, "://"); i != -1 {
		d = d[i+3:]
	}
	d = strings.TrimPrefix(d, "www.")

	// Drop everything after the host part.
	for _, sep := range []string{"/", "?", "#"} {
		if i := strings.Index(d, sep); i != -1 {
			d = d[:i]
		}
	}
	if i := strings.Index(d, ":"); i != -1 {
		d = d[:i]
	}

	return strings.TrimSuffix(d, ".")
}

// Domain validates a cleaned domain string. It requires at least two
// labels (name + TLD), each matching hostname rules.
func Domain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain is required")
	}
	if len(domain) > MaxDomainLength {
		return fmt.Errorf("domain exceeds %d characters", MaxDomainLength)
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return fmt.Errorf("domain must contain at least one dot (e.g. example.com)")
	}
	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("domain contains an empty label")
		}
		if len(label) > maxLabelLength {
			return fmt.Errorf("domain label %q exceeds %d characters", label, maxLabelLength)
		}
		if !labelPattern.MatchString(label) {
			return fmt.Errorf("domain label %q contains invalid characters", label)
		}
	}

	return nil
}

// GitHubToken checks the token shape without a network call. Accepts
// fine-grained and classic token formats plus legacy 40-hex tokens.
func GitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if !githubTokenPat.MatchString(token) {
		return fmt.Errorf("token does not look like a GitHub API token")
	}
	return nil
}

// GoogleKey checks the API key shape without a network call.
func GoogleKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if !googleKeyPattern.MatchString(key) {
		return fmt.Errorf("key does not look like a Google API key")
	}
	return nil
}

// GoogleCX checks the custom search engine identifier shape.
func GoogleCX(cx string) error {
	cx = strings.TrimSpace(cx)
	if cx == "" {
		return fmt.Errorf("engine id is required")
	}
	if !googleCXPattern.MatchString(cx) {
		return fmt.Errorf("engine id does not look like a custom search engine id")
	}
	return nil
}

// OpenAIKey checks the key shape without a network call.
func OpenAIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if !openAIKeyPattern.MatchString(key) {
		return fmt.Errorf("key does not look like an OpenAI API key")
	}
	return nil
}
