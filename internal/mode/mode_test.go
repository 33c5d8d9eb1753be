package mode

import (
	"strings"
	"testing"

	"github.com/mlevkin/leakradar/internal/credcheck"
	"github.com/mlevkin/leakradar/internal/models"
)

func statuses(valid ...string) credcheck.Statuses {
	s := credcheck.Statuses{
		models.LabelGitHub:    {Label: models.LabelGitHub},
		models.LabelGoogleKey: {Label: models.LabelGoogleKey},
		models.LabelGoogleCX:  {Label: models.LabelGoogleCX},
		models.LabelOpenAI:    {Label: models.LabelOpenAI},
	}
	for _, label := range valid {
		s[label] = models.CredentialStatus{Label: label, Provided: true, Valid: true}
	}
	return s
}

func TestResolveLiveWithGitHubOnly(t *testing.T) {
	m := Resolve(statuses(models.LabelGitHub))
	if m.Mode != models.ModeLive {
		t.Errorf("mode = %s, want live", m.Mode)
	}
	if len(m.ValidKeys) != 1 || m.ValidKeys[0] != models.LabelGitHub {
		t.Errorf("valid keys = %v", m.ValidKeys)
	}
}

func TestResolveLiveWithGooglePair(t *testing.T) {
	m := Resolve(statuses(models.LabelGoogleKey, models.LabelGoogleCX))
	if m.Mode != models.ModeLive {
		t.Errorf("mode = %s, want live", m.Mode)
	}
}

func TestResolveDemoWithHalfGooglePair(t *testing.T) {
	m := Resolve(statuses(models.LabelGoogleKey))
	if m.Mode != models.ModeDemo {
		t.Errorf("key without engine id must not enable live mode, got %s", m.Mode)
	}
}

func TestResolveOpenAINeverEnablesLive(t *testing.T) {
	m := Resolve(statuses(models.LabelOpenAI))
	if m.Mode != models.ModeDemo {
		t.Errorf("OpenAI credential alone must not enable live mode, got %s", m.Mode)
	}
	if !m.EnrichmentEnabled() {
		t.Error("valid OpenAI credential should still enable enrichment")
	}
}

func TestResolveGitHubValidIgnoresGoogleState(t *testing.T) {
	s := statuses(models.LabelGitHub)
	s[models.LabelGoogleKey] = models.CredentialStatus{
		Label: models.LabelGoogleKey, Provided: true, Valid: false, Reason: "key rejected",
	}
	m := Resolve(s)
	if m.Mode != models.ModeLive {
		t.Errorf("mode = %s, want live regardless of Google state", m.Mode)
	}
	if len(m.InvalidKeys) != 1 {
		t.Errorf("invalid keys = %v, want the rejected Google key", m.InvalidKeys)
	}
}

func TestResolveDemoDisclaimer(t *testing.T) {
	s := statuses()
	s[models.LabelGitHub] = models.CredentialStatus{
		Label: models.LabelGitHub, Provided: true, Valid: false, Reason: "token rejected (unauthorized)",
	}
	m := Resolve(s)

	if m.Mode != models.ModeDemo {
		t.Fatalf("mode = %s, want demo", m.Mode)
	}
	if m.Disclaimer == "" {
		t.Fatal("demo mode must carry a disclaimer")
	}
	if !strings.Contains(m.Disclaimer, "token rejected") {
		t.Errorf("disclaimer should carry the rejection reason: %s", m.Disclaimer)
	}
	if !strings.Contains(m.Disclaimer, models.LabelGoogleKey) {
		t.Errorf("disclaimer should list the missing Google key: %s", m.Disclaimer)
	}
}

func TestResolveDeterministic(t *testing.T) {
	s := statuses(models.LabelGitHub, models.LabelOpenAI)
	a := Resolve(s)
	b := Resolve(s)
	if strings.Join(a.ValidKeys, ",") != strings.Join(b.ValidKeys, ",") {
		t.Error("resolver must order keys deterministically")
	}
}
