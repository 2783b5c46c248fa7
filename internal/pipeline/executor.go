/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package pipeline

import (
	"context"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"prognos/common/client"
	"prognos/common/dto"
	"prognos/common/service"
	"prognos/common/telemetry"
	"prognos/internal/diagnosis"
	"prognos/internal/embedding"
	"prognos/internal/risk"
	"prognos/internal/schedule"
)

const missingPredictionsMessage = "No predictions found in state"

// InferenceRunner is the inference stage collaborator.
type InferenceRunner interface {
	UnifiedInference(ctx context.Context, observation dto.Observation) (*dto.PredictionSet, error)
}

// CaseRetriever supplies historical evidence for the diagnosis stage.
type CaseRetriever interface {
	QuerySimilarFailures(ctx context.Context, embedding []float64, filter map[string]interface{}) []dto.FailureCase
}

// Executor runs the five pipeline stages in fixed order over one shared
// state. Stages never halt the pipeline: a failed stage records its error and
// downstream stages run on degraded inputs, so the caller always receives a
// structurally complete result.
type Executor struct {
	inference InferenceRunner
	embedder  *embedding.FailureEmbedder
	retriever CaseRetriever
	resolver  *diagnosis.Resolver
	scorer    *risk.Scorer
	scheduler *schedule.Scheduler
	reporter  *Reporter
	publisher service.AssessmentPublisher
	metrics   *telemetry.MetricsService
	lc        logger.LoggingClient
}

func NewExecutor(
	inference InferenceRunner,
	embedder *embedding.FailureEmbedder,
	retriever CaseRetriever,
	resolver *diagnosis.Resolver,
	scorer *risk.Scorer,
	scheduler *schedule.Scheduler,
	reporter *Reporter,
	publisher service.AssessmentPublisher,
	metrics *telemetry.MetricsService,
	lc logger.LoggingClient,
) *Executor {
	return &Executor{
		inference: inference,
		embedder:  embedder,
		retriever: retriever,
		resolver:  resolver,
		scorer:    scorer,
		scheduler: scheduler,
		reporter:  reporter,
		publisher: publisher,
		metrics:   metrics,
		lc:        lc,
	}
}

// Analyze runs the full pipeline for one observation.
func (e *Executor) Analyze(ctx context.Context, observation dto.Observation) *PipelineState {
	start := time.Now()
	state := NewPipelineState(observation)
	e.metrics.IncrCounter(telemetry.AnalysesCount, 1)
	e.lc.Infof("Starting maintenance analysis, correlation id %s", state.CorrelationID)

	e.runInference(ctx, state)
	e.runDiagnosis(ctx, state)
	e.runRisk(state)
	e.runScheduling(state)
	e.runReport(ctx, state)

	e.publish(state)
	e.metrics.Timer(telemetry.AnalysisTimer).UpdateSince(start)
	e.lc.Infof("Analysis %s completed: risk %s, component %s",
		state.CorrelationID, state.RiskLevel(), probableComponent(state))
	return state
}

func (e *Executor) runInference(ctx context.Context, state *PipelineState) {
	predictions, err := e.inference.UnifiedInference(ctx, state.Observation)
	if err != nil {
		e.failStage(state, StageInference, err.Error())
		state.Error = err.Error()
		return
	}
	state.Predictions = predictions
	state.recordSuccess(StageInference)
}

func (e *Executor) runDiagnosis(ctx context.Context, state *PipelineState) {
	if state.Predictions == nil {
		e.failStage(state, StageDiagnosis, missingPredictionsMessage)
		state.Diagnosis = &dto.Diagnosis{
			ProbableComponent:  dto.ComponentGeneral,
			PredictedComponent: dto.ComponentUnknown,
			SimilarCases:       []dto.FailureCase{},
			Confidence:         0,
		}
		return
	}

	vector := e.embedder.Embed(state.Observation, state.Predictions)
	similarCases := e.retriever.QuerySimilarFailures(ctx, vector, nil)
	state.Diagnosis = e.resolver.Resolve(ctx, state.Predictions, similarCases)
	state.recordSuccess(StageDiagnosis)
}

func (e *Executor) runRisk(state *PipelineState) {
	if state.Predictions == nil {
		// no inference output: risk stays unassessed and reads UNKNOWN,
		// it is never defaulted to LOW
		e.failStage(state, StageRisk, missingPredictionsMessage)
		return
	}
	state.RiskAssessment = e.scorer.Assess(state.Predictions)
	state.recordSuccess(StageRisk)
}

func (e *Executor) runScheduling(state *PipelineState) {
	if state.RiskAssessment == nil {
		e.failStage(state, StageScheduling, "No risk assessment found in state")
	} else {
		state.recordSuccess(StageScheduling)
	}
	// a conservative schedule is still produced so the report has actionable
	// content even on the degraded path
	state.Schedule = e.scheduler.Schedule(state.RiskAssessment, state.Diagnosis)
}

func (e *Executor) runReport(ctx context.Context, state *PipelineState) {
	state.FinalReport = e.reporter.BuildReport(ctx, state)
	state.recordSuccess(StageReport)
}

func (e *Executor) failStage(state *PipelineState, stage string, message string) {
	e.metrics.IncrCounter(telemetry.StageFailuresCount, 1)
	e.lc.Errorf("Stage %s failed: %s", stage, message)
	state.recordError(stage, message)
}

func (e *Executor) publish(state *PipelineState) {
	if e.publisher == nil {
		return
	}

	message := dto.AssessmentMessage{
		CorrelationID:     state.CorrelationID,
		ServiceKey:        client.PrognosAnalyzerServiceKey,
		RiskLevel:         state.RiskLevel(),
		ProbableComponent: probableComponent(state),
		MaintenanceWindow: dto.WindowRoutine,
		Priority:          3,
		Predictions:       state.Predictions,
		RiskAssessment:    state.RiskAssessment,
		Schedule:          state.Schedule,
		Created:           time.Now().UnixNano() / int64(time.Millisecond),
	}
	if state.RiskAssessment != nil {
		message.AvgRUL = state.RiskAssessment.AvgRUL
	}
	if state.Schedule != nil {
		message.MaintenanceWindow = state.Schedule.MaintenanceWindow
		message.Priority = state.Schedule.Priority
	}
	if state.FinalReport != nil {
		message.ReportID = state.FinalReport.ReportID
	}

	if err := e.publisher.Publish(message); err != nil {
		e.lc.Warnf("Failed to publish assessment %s: %v", state.CorrelationID, err)
	}
}

func probableComponent(state *PipelineState) string {
	if state.Diagnosis == nil || state.Diagnosis.ProbableComponent == "" {
		return dto.ComponentUnknown
	}
	return state.Diagnosis.ProbableComponent
}
