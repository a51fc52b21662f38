// ABOUTME: JSON export of a completed run
// ABOUTME: Persists configuration, per-session samples, and aggregate stats to a timestamped file
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/echolat/echolat-go/internal/config"
	"github.com/echolat/echolat-go/internal/orchestrator"
	"github.com/echolat/echolat-go/internal/sampler"
	"github.com/echolat/echolat-go/internal/timing"
	"github.com/google/uuid"
)

// Report is the exported document for one run.
type Report struct {
	RunID       string                `json:"run_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Config      RunConfig             `json:"config"`
	Sessions    []SessionReport       `json:"sessions"`
	Aggregate   timing.AggregateStats `json:"aggregate"`
}

// RunConfig is the subset of the configuration worth persisting.
type RunConfig struct {
	Clients    int    `json:"clients"`
	Samples    int    `json:"samples"`
	Endpoint   string `json:"endpoint"`
	Region     string `json:"region,omitempty"`
	RegionName string `json:"region_name,omitempty"`
	Processing bool   `json:"processing"`
}

// SessionReport is one session's outcome. Failed sessions carry the
// error and the partial count instead of an average.
type SessionReport struct {
	Session   int             `json:"session"`
	Samples   []timing.Sample `json:"samples,omitempty"`
	Average   *timing.Sample  `json:"average,omitempty"`
	Error     string          `json:"error,omitempty"`
	Collected int             `json:"collected"`
	Target    int             `json:"target"`
}

// Build assembles a Report from a run result. regionName may be empty
// when no lookup provider is available.
func Build(cfg config.Config, result *orchestrator.Result, regionName string) *Report {
	report := &Report{
		RunID:       uuid.New().String(),
		GeneratedAt: time.Now().UTC(),
		Config: RunConfig{
			Clients:    cfg.Clients,
			Samples:    cfg.Samples,
			Endpoint:   cfg.Endpoint,
			Region:     cfg.Region,
			RegionName: regionName,
			Processing: cfg.Processing,
		},
		Aggregate: result.Aggregate,
	}

	for _, o := range result.Sessions {
		sr := SessionReport{
			Session: o.Session,
			Target:  cfg.Samples,
		}
		if o.Result != nil {
			avg := o.Result.Average
			sr.Samples = o.Result.Samples
			sr.Average = &avg
			sr.Collected = len(o.Result.Samples)
		}
		if o.Err != nil {
			sr.Error = o.Err.Error()
			var premature *sampler.PrematureTerminationError
			if errors.As(o.Err, &premature) {
				sr.Collected = premature.Collected
			}
		}
		report.Sessions = append(report.Sessions, sr)
	}

	return report
}

// DefaultPath returns a timestamped file name for a report generated now.
func DefaultPath() string {
	return fmt.Sprintf("echolat-%s.json", time.Now().Format("20060102-150405"))
}

// Write persists the report. An empty path writes to DefaultPath; "-"
// writes to stdout.
func Write(path string, report *Report) (string, error) {
	if path == "" {
		path = DefaultPath()
	}

	if path == "-" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return path, enc.Encode(report)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}
