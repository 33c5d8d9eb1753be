package sources

import (
	"strings"

	"github.com/mlevkin/leakradar/internal/models"
)

// severityRule maps snippet keywords to a severity. Rules are evaluated
// in order and the first match wins, so more specific credential terms
// must come before generic config terms.
type severityRule struct {
	severity   string
	confidence float64
	keywords   []string
}

var severityRules = []severityRule{
	{
		severity:   models.SeverityCritical,
		confidence: 0.9,
		keywords: []string{
			"password", "passwd", "pwd=",
			"private key", "private_key", "begin rsa", "begin openssh", "begin ec",
			"secret_key", "secret-key", "client_secret",
			"aws_secret_access_key",
		},
	},
	{
		severity:   models.SeverityHigh,
		confidence: 0.75,
		keywords: []string{
			"api_key", "api-key", "apikey",
			"access_token", "auth_token", "token",
			"akia", "aiza", "ghp_", "gho_", "sk_live_", "xox",
			"bearer",
		},
	},
	{
		severity:   models.SeverityMedium,
		confidence: 0.6,
		keywords: []string{
			"config", ".env", "settings",
			"database", "mongodb://", "postgres://", "mysql://", "redis://", "jdbc:",
			"connection", "dsn",
			"backup", "dump", ".sql", ".bak",
		},
	},
}

// classify maps normalized snippet text (and usually the file path or
// title concatenated to it) to a severity and confidence. Text with no
// keyword hit is a low-severity match: worth surfacing, unlikely to be
// a live credential.
func classify(text string) (string, float64) {
	lower := strings.ToLower(text)
	for _, rule := range severityRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.severity, rule.confidence
			}
		}
	}
	return models.SeverityLow, 0.4
}

// recommendationFor returns the default remediation text per severity.
// The enrichment stage may replace it with model-written guidance.
func recommendationFor(severity string) string {
	switch severity {
	case models.SeverityCritical:
		return "Treat the exposed secret as compromised: rotate it immediately and remove it from the public source."
	case models.SeverityHigh:
		return "Rotate the referenced credential and audit recent usage for abuse."
	case models.SeverityMedium:
		return "Review whether the exposed configuration reveals internal structure and restrict public access."
	default:
		return "Review the match and confirm no sensitive data is exposed."
	}
}
