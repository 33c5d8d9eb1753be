// Package mode decides between a live scan and the demonstration
// dataset based on which credentials survived validation.
package mode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mlevkin/leakradar/internal/credcheck"
	"github.com/mlevkin/leakradar/internal/models"
)

// Resolve is a pure function of credential statuses. LIVE requires the
// GitHub credential to be valid, or both Google credentials; the OpenAI
// credential only gates enrichment and never affects the mode. DEMO
// always carries a non-empty disclaimer naming the unusable credentials.
func Resolve(statuses credcheck.Statuses) models.ScanMode {
	m := models.ScanMode{}

	var labels []string
	for label := range statuses {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		st := statuses[label]
		if st.Valid {
			m.ValidKeys = append(m.ValidKeys, label)
		} else if st.Provided {
			m.InvalidKeys = append(m.InvalidKeys, label)
		}
	}

	githubOK := statuses.Valid(models.LabelGitHub)
	googleOK := statuses.Valid(models.LabelGoogleKey) && statuses.Valid(models.LabelGoogleCX)

	if githubOK || googleOK {
		m.Mode = models.ModeLive
		return m
	}

	m.Mode = models.ModeDemo
	m.Disclaimer = demoDisclaimer(statuses)
	return m
}

// demoDisclaimer explains why the scan fell back to demonstration data
// and how to supply working credentials.
func demoDisclaimer(statuses credcheck.Statuses) string {
	var b strings.Builder

	b.WriteString("Demo mode: no usable search credentials, showing illustrative sample data only. ")

	var problems []string
	for _, label := range []string{models.LabelGitHub, models.LabelGoogleKey, models.LabelGoogleCX} {
		st := statuses[label]
		switch {
		case !st.Provided:
			problems = append(problems, fmt.Sprintf("%s: not provided", label))
		case !st.Valid:
			reason := st.Reason
			if reason == "" {
				reason = "invalid"
			}
			problems = append(problems, fmt.Sprintf("%s: %s", label, reason))
		}
	}
	b.WriteString(strings.Join(problems, "; "))
	b.WriteString(". Supply a GitHub API token, or a Google Search API key plus engine id, via config file or LEAKRADAR_* environment variables to run a live scan.")

	return b.String()
}
