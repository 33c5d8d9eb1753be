package cli

import (
	"errors"
	"strings"
	"testing"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitOK},
		{"validation error", &ValidationError{Message: "bad domain"}, ExitInvalidInput},
		{"policy failed", &PolicyFailedError{Violations: 2}, ExitPolicyFail},
		{"generic error", errors.New("something broke"), ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)
			if got != tt.want {
				t.Errorf("HandleError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Message: "invalid domain format: not_a_domain"}
	if err.Error() != "invalid domain format: not_a_domain" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestPolicyFailedErrorMessage(t *testing.T) {
	err := &PolicyFailedError{Violations: 3}
	if !strings.Contains(err.Error(), "3 violation(s)") {
		t.Errorf("expected violation count in message, got %q", err.Error())
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	wanted := []string{"scan", "plan", "history", "diff", "doctor", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range wanted {
		if !registered[name] {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}

func TestSetVersion(t *testing.T) {
	old := version
	defer SetVersion(old)

	SetVersion("v1.2.3")
	if version != "v1.2.3" {
		t.Errorf("version = %q, want v1.2.3", version)
	}
}
