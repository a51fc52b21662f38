// ABOUTME: Tests for final results rendering
// ABOUTME: Checks session lines, failures, and the aggregate table
package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/echolat/echolat-go/internal/orchestrator"
	"github.com/echolat/echolat-go/internal/timing"
)

func TestSummaryRendersSessionsAndAggregate(t *testing.T) {
	samples := []timing.Sample{{RTT: 10, Proc: 1}, {RTT: 20, Proc: 2}}
	result := &orchestrator.Result{
		Sessions: []orchestrator.SessionOutcome{
			{
				Session: 1,
				Result: &timing.SessionResult{
					Session: 1,
					Samples: samples,
					Average: timing.Average(samples),
				},
			},
			{
				Session: 2,
				Err:     errors.New("connection refused"),
			},
		},
		Aggregate: timing.Aggregate(samples),
	}

	out := Summary(result, "SJC (San Jose, US)")

	if !strings.Contains(out, "2 samples") {
		t.Errorf("expected sample count in output:\n%s", out)
	}
	if !strings.Contains(out, "failed: connection refused") {
		t.Errorf("expected failure line in output:\n%s", out)
	}
	if !strings.Contains(out, "Aggregate (2 samples)") {
		t.Errorf("expected aggregate header in output:\n%s", out)
	}
	if !strings.Contains(out, "San Jose") {
		t.Errorf("expected region annotation in output:\n%s", out)
	}
	for _, metric := range []string{"rtt", "proc", "uplink", "downlink", "offset"} {
		if !strings.Contains(out, metric) {
			t.Errorf("expected %s row in output:\n%s", metric, out)
		}
	}
}
