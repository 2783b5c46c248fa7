/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package pipeline

import (
	"github.com/google/uuid"

	"prognos/common/dto"
)

// Stage names in execution order.
const (
	StageInference  = "inference"
	StageDiagnosis  = "diagnosis"
	StageRisk       = "risk"
	StageScheduling = "scheduling"
	StageReport     = "report"
)

const (
	StageStatusSuccess = "success"
	StageStatusError   = "error"
)

// StageResult records the outcome of one pipeline stage. A stage error never
// halts the pipeline; downstream stages run on degraded inputs.
type StageResult struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// PipelineState is the shared request-scoped state all stages read and write.
// One analysis owns one state; stages run sequentially so no locking is
// needed.
type PipelineState struct {
	CorrelationID string `json:"correlation_id"`

	Observation dto.Observation `json:"raw_observation"`

	Predictions    *dto.PredictionSet       `json:"predictions,omitempty"`
	Diagnosis      *dto.Diagnosis           `json:"diagnosis,omitempty"`
	RiskAssessment *dto.RiskAssessment      `json:"risk_assessment,omitempty"`
	Schedule       *dto.MaintenanceSchedule `json:"maintenance_schedule,omitempty"`
	FinalReport    *dto.FinalReport         `json:"final_report,omitempty"`

	StageResults []StageResult `json:"stage_results"`
	Error        string        `json:"error,omitempty"`
}

func NewPipelineState(observation dto.Observation) *PipelineState {
	return &PipelineState{
		CorrelationID: uuid.NewString(),
		Observation:   observation,
		StageResults:  make([]StageResult, 0, 5),
	}
}

func (s *PipelineState) recordSuccess(stage string) {
	s.StageResults = append(s.StageResults, StageResult{Stage: stage, Status: StageStatusSuccess})
}

func (s *PipelineState) recordError(stage string, message string) {
	s.StageResults = append(s.StageResults, StageResult{Stage: stage, Status: StageStatusError, Error: message})
}

// StageResult returns the recorded result for a stage, nil if the stage has
// not run.
func (s *PipelineState) StageResult(stage string) *StageResult {
	for i := range s.StageResults {
		if s.StageResults[i].Stage == stage {
			return &s.StageResults[i]
		}
	}
	return nil
}

// RiskLevel returns the assessed risk level, RiskUnknown when the assessment
// is missing. An absent assessment is never reported as low risk.
func (s *PipelineState) RiskLevel() string {
	if s.RiskAssessment == nil {
		return dto.RiskUnknown
	}
	return s.RiskAssessment.RiskLevel
}
