/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"prognos/common/dto"
	"prognos/internal/pipeline"
)

// ObservationSummary is one line of the batch output: the decision fields of
// a single analysis, without the full report.
type ObservationSummary struct {
	ObservationID     int     `json:"observation_id"`
	RiskLevel         string  `json:"risk_level"`
	Component         string  `json:"component"`
	RUL               float64 `json:"rul"`
	MaintenanceWindow string  `json:"maintenance_window"`
	ReportID          string  `json:"report_id"`
	Error             string  `json:"error,omitempty"`
}

// Processor fans a batch of observations across a bounded set of workers.
// Each observation runs the full pipeline independently; one failed
// observation never aborts the batch.
type Processor struct {
	executor *pipeline.Executor
	workers  int
	lc       logger.LoggingClient
}

func NewProcessor(executor *pipeline.Executor, workers int, lc logger.LoggingClient) *Processor {
	if workers <= 0 {
		workers = 1
	}
	return &Processor{executor: executor, workers: workers, lc: lc}
}

// Process analyzes every observation and returns the summaries in input
// order. The returned error aggregates per-observation pipeline errors; the
// summaries are complete either way.
func (p *Processor) Process(ctx context.Context, observations []dto.Observation) ([]ObservationSummary, error) {
	summaries := make([]ObservationSummary, len(observations))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)

	var mu sync.Mutex
	var batchErrors *multierror.Error

	for i, observation := range observations {
		i, observation := i, observation
		group.Go(func() error {
			state := p.executor.Analyze(groupCtx, observation)
			summaries[i] = summarize(i, state)
			if state.Error != "" {
				mu.Lock()
				batchErrors = multierror.Append(batchErrors,
					fmt.Errorf("observation %d: %s", i, state.Error))
				mu.Unlock()
			}
			return nil
		})
	}
	// workers never return errors, they record them per observation
	_ = group.Wait()

	failed := 0
	if batchErrors != nil {
		failed = len(batchErrors.Errors)
	}
	p.lc.Infof("Batch completed: %d observations, %d failed", len(observations), failed)
	return summaries, batchErrors.ErrorOrNil()
}

// WriteSummaries writes the batch result as a JSON array, to stdout when path
// is empty.
func WriteSummaries(summaries []ObservationSummary, path string) error {
	encoded, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(append(encoded, '\n'))
		return err
	}
	return os.WriteFile(path, append(encoded, '\n'), 0o644)
}

func summarize(id int, state *pipeline.PipelineState) ObservationSummary {
	summary := ObservationSummary{
		ObservationID: id,
		RiskLevel:     state.RiskLevel(),
		Component:     dto.ComponentUnknown,
		Error:         state.Error,
	}
	if state.Diagnosis != nil && state.Diagnosis.ProbableComponent != "" {
		summary.Component = state.Diagnosis.ProbableComponent
	}
	if state.RiskAssessment != nil {
		summary.RUL = state.RiskAssessment.AvgRUL
	}
	if state.Schedule != nil {
		summary.MaintenanceWindow = state.Schedule.MaintenanceWindow
	}
	if state.FinalReport != nil {
		summary.ReportID = state.FinalReport.ReportID
	}
	return summary
}
