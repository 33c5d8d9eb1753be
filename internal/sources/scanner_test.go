package sources

import (
	"testing"
	"time"
)

// fastDelay keeps multi-payload scanner tests from sleeping through
// the production pacing schedule.
func fastDelay() *delayPolicy {
	return newDelayPolicy(time.Millisecond, 1.0, time.Millisecond)
}

func TestDelayPolicyGrowsToCap(t *testing.T) {
	d := newDelayPolicy(100*time.Millisecond, 2.0, 300*time.Millisecond)

	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		300 * time.Millisecond,
		300 * time.Millisecond,
	}
	for i, w := range want {
		if got := d.next(); got != w {
			t.Errorf("delay %d = %v, want %v", i, got, w)
		}
	}
}

func TestDelayPolicyResetPerScan(t *testing.T) {
	first := defaultDelayPolicy()
	first.next()
	first.next()

	second := defaultDelayPolicy()
	if got := second.next(); got != defaultBaseDelay {
		t.Errorf("fresh policy starts at %v, want %v", got, defaultBaseDelay)
	}
}
