package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/chsoares/org-classifier/internal/domain"
	"github.com/chsoares/org-classifier/internal/logger"
)

// BatchConfig controls batch runs.
type BatchConfig struct {
	// CheckpointInterval is how many organizations to process between
	// progress file writes. Zero disables checkpointing.
	CheckpointInterval int `mapstructure:"checkpoint_interval"`

	// CheckpointPath is where progress snapshots are written.
	CheckpointPath string `mapstructure:"checkpoint_path"`

	// OrgDelay spaces consecutive organizations to be polite to the
	// services the pipeline touches.
	OrgDelay time.Duration `mapstructure:"org_delay"`
}

// DefaultBatchConfig returns batch defaults.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		CheckpointInterval: 10,
		CheckpointPath:     "progress.json",
		OrgDelay:           500 * time.Millisecond,
	}
}

// Checkpoint is the progress snapshot written during a batch run.
type Checkpoint struct {
	RunID        string    `json:"run_id"`
	StartedAt    time.Time `json:"started_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Total        int       `json:"total"`
	Processed    int       `json:"processed"`
	Succeeded    int       `json:"succeeded"`
	Failed       int       `json:"failed"`
	Insurance    int       `json:"insurance"`
	NonInsurance int       `json:"non_insurance"`
}

// BatchSummary is the outcome of a batch run.
type BatchSummary struct {
	RunID        string           `json:"run_id"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
	Total        int              `json:"total"`
	Succeeded    int              `json:"succeeded"`
	Failed       int              `json:"failed"`
	Insurance    int              `json:"insurance"`
	NonInsurance int              `json:"non_insurance"`
	Results      []*domain.Result `json:"results"`
}

// Runner processes organization lists sequentially. Sequential on
// purpose: the external services involved rate-limit aggressively, and
// the cache makes re-runs cheap anyway.
type Runner struct {
	engine *Engine
	cfg    BatchConfig
	log    logger.Interface
}

// NewRunner creates a batch Runner around an Engine.
func NewRunner(engine *Engine, cfg BatchConfig, log logger.Interface) *Runner {
	return &Runner{engine: engine, cfg: cfg, log: log.WithComponent("batch")}
}

// Run processes every organization in order. A fatal configuration
// error aborts the run and returns both the partial summary and the
// error; the cache preserves completed work for the next attempt.
func (r *Runner) Run(ctx context.Context, orgNames []string) (*BatchSummary, error) {
	summary := &BatchSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Total:     len(orgNames),
	}
	log := r.log.With("run_id", summary.RunID)
	log.Info("Batch started", "organizations", summary.Total)

	for i, orgName := range orgNames {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now().UTC()
			return summary, fmt.Errorf("batch interrupted: %w", err)
		}

		result, err := r.engine.Process(ctx, orgName)
		if err != nil {
			summary.FinishedAt = time.Now().UTC()
			log.Error("Batch aborted", "organization", orgName, "error", err.Error())
			return summary, err
		}

		summary.Results = append(summary.Results, result)
		if result.Success {
			summary.Succeeded++
			if result.IsInsurance != nil && *result.IsInsurance {
				summary.Insurance++
			} else {
				summary.NonInsurance++
			}
		} else {
			summary.Failed++
		}

		if r.cfg.CheckpointInterval > 0 && (i+1)%r.cfg.CheckpointInterval == 0 {
			r.writeCheckpoint(summary, i+1)
		}

		if r.cfg.OrgDelay > 0 && i < len(orgNames)-1 {
			select {
			case <-time.After(r.cfg.OrgDelay):
			case <-ctx.Done():
			}
		}
	}

	summary.FinishedAt = time.Now().UTC()
	r.writeCheckpoint(summary, len(orgNames))

	log.Info("Batch finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"insurance", summary.Insurance)
	return summary, nil
}

// writeCheckpoint persists a progress snapshot. Failures are logged and
// ignored since checkpoints are a convenience, not a correctness need.
func (r *Runner) writeCheckpoint(summary *BatchSummary, processed int) {
	if r.cfg.CheckpointPath == "" {
		return
	}

	checkpoint := Checkpoint{
		RunID:        summary.RunID,
		StartedAt:    summary.StartedAt,
		UpdatedAt:    time.Now().UTC(),
		Total:        summary.Total,
		Processed:    processed,
		Succeeded:    summary.Succeeded,
		Failed:       summary.Failed,
		Insurance:    summary.Insurance,
		NonInsurance: summary.NonInsurance,
	}

	payload, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		r.log.Warn("Checkpoint encode failed", "error", err.Error())
		return
	}

	if dir := filepath.Dir(r.cfg.CheckpointPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			r.log.Warn("Checkpoint dir create failed", "error", err.Error())
			return
		}
	}
	if err := os.WriteFile(r.cfg.CheckpointPath, payload, 0o644); err != nil {
		r.log.Warn("Checkpoint write failed", "error", err.Error())
	}
}
