package credcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mlevkin/leakradar/internal/models"
)

var (
	testGitHubToken = "ghp_" + strings.Repeat("a", 36)
	testGoogleKey   = "AIza" + strings.Repeat("b", 35)
	testGoogleCX    = "0123456789abcdef0"
	testOpenAIKey   = "sk-" + strings.Repeat("c", 24)
)

func TestCheckNothingProvided(t *testing.T) {
	c := New()
	statuses := c.Check(context.Background(), models.Credentials{})

	for _, label := range []string{models.LabelGitHub, models.LabelGoogleKey,
		models.LabelGoogleCX, models.LabelOpenAI} {
		st := statuses[label]
		if st.Provided || st.Valid {
			t.Errorf("%s: expected not provided / not valid, got %+v", label, st)
		}
	}
}

func TestCheckGitHubValid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			t.Errorf("unexpected probe path %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ghp_") {
			t.Errorf("unexpected auth header %s", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := New(WithGitHubBaseURL(ts.URL))
	statuses := c.Check(context.Background(), models.Credentials{GitHubToken: testGitHubToken})

	if !statuses.Valid(models.LabelGitHub) {
		t.Errorf("expected valid GitHub credential: %+v", statuses[models.LabelGitHub])
	}
}

func TestCheckGitHubUnauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := New(WithGitHubBaseURL(ts.URL))
	statuses := c.Check(context.Background(), models.Credentials{GitHubToken: testGitHubToken})

	st := statuses[models.LabelGitHub]
	if st.Valid || !st.Provided || st.Reason == "" {
		t.Errorf("expected invalid with reason, got %+v", st)
	}
}

func TestCheckGitHubBadFormatSkipsProbe(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	c := New(WithGitHubBaseURL(ts.URL))
	statuses := c.Check(context.Background(), models.Credentials{GitHubToken: "not-a-token"})

	if called {
		t.Error("format-invalid token should not trigger a network probe")
	}
	if statuses.Valid(models.LabelGitHub) {
		t.Error("format-invalid token must not be valid")
	}
}

func TestCheckGoogleValid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("num") != "1" {
			t.Errorf("probe should request a single result, got num=%s", r.URL.Query().Get("num"))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer ts.Close()

	c := New(WithGoogleBaseURL(ts.URL))
	statuses := c.Check(context.Background(), models.Credentials{
		GoogleKey: testGoogleKey,
		GoogleCX:  testGoogleCX,
	})

	if !statuses.Valid(models.LabelGoogleKey) || !statuses.Valid(models.LabelGoogleCX) {
		t.Errorf("expected both Google credentials valid: %+v", statuses)
	}
}

func TestCheckGoogleKeyWithoutCX(t *testing.T) {
	called := false
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer ts.Close()

	c := New(WithGoogleBaseURL(ts.URL))
	statuses := c.Check(context.Background(), models.Credentials{GoogleKey: testGoogleKey})

	if called {
		t.Error("incomplete Google credentials should not trigger a probe")
	}
	if statuses.Valid(models.LabelGoogleKey) || statuses.Valid(models.LabelGoogleCX) {
		t.Error("incomplete Google credentials must not validate")
	}
}

func TestCheckGoogleBadEngineID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c := New(WithGoogleBaseURL(ts.URL))
	statuses := c.Check(context.Background(), models.Credentials{
		GoogleKey: testGoogleKey,
		GoogleCX:  testGoogleCX,
	})

	if !statuses.Valid(models.LabelGoogleKey) {
		t.Error("400 means the key itself was accepted")
	}
	if statuses.Valid(models.LabelGoogleCX) {
		t.Error("400 means the engine id was rejected")
	}
}

func TestCheckOpenAIValid(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected probe path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer ts.Close()

	c := New(WithOpenAIBaseURL(ts.URL))
	statuses := c.Check(context.Background(), models.Credentials{OpenAIKey: testOpenAIKey})

	if !statuses.Valid(models.LabelOpenAI) {
		t.Errorf("expected valid OpenAI credential: %+v", statuses[models.LabelOpenAI])
	}
}

func TestCheckOneFailureDoesNotBlockOthers(t *testing.T) {
	gh := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer gh.Close()

	// OpenAI endpoint that refuses connections: close immediately.
	oa := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	oa.Close()

	c := New(WithGitHubBaseURL(gh.URL), WithOpenAIBaseURL(oa.URL))
	statuses := c.Check(context.Background(), models.Credentials{
		GitHubToken: testGitHubToken,
		OpenAIKey:   testOpenAIKey,
	})

	if !statuses.Valid(models.LabelGitHub) {
		t.Error("GitHub probe should succeed despite OpenAI failure")
	}
	st := statuses[models.LabelOpenAI]
	if st.Valid || st.Reason == "" {
		t.Errorf("expected network failure reason for OpenAI, got %+v", st)
	}
}
