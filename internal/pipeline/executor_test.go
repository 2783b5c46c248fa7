/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prognos/common/config"
	"prognos/common/dto"
	"prognos/common/service"
	"prognos/common/telemetry"
	"prognos/internal/diagnosis"
	"prognos/internal/embedding"
	"prognos/internal/risk"
	"prognos/internal/schedule"
	prognosmocks "prognos/mocks/prognos"
)

func testThresholds() config.ThresholdsConfig {
	return config.ThresholdsConfig{
		ConfidentTrust:         0.7,
		WeakEvidence:           0.5,
		AnomalyEmission:        0.4,
		HighFailureProbability: 0.5,
		CriticalRUL:            30,
		MediumRUL:              60,
	}
}

func testObservation() dto.Observation {
	observation := make(dto.Observation, dto.ObservationSize)
	for i := range observation {
		observation[i] = float64(i) * 0.01
	}
	return observation
}

func highRiskPredictions() *dto.PredictionSet {
	return &dto.PredictionSet{
		FD001: &dto.ModelPrediction{RUL: 18, FailureProbability: 0.8},
		FD002: &dto.ModelPrediction{RUL: 22, FailureProbability: 0.75},
		FD003: &dto.ModelPrediction{
			RUL:                20,
			FailureProbability: 0.7,
			PredictedComponent: "1",
			ComponentProbs:     map[string]float64{"0": 0.1, "1": 0.8, "2": 0.1},
		},
		Ensemble: &dto.EnsembleSummary{AvgRUL: 20, MaxFailureProbability: 0.8},
	}
}

func healthyPredictions() *dto.PredictionSet {
	return &dto.PredictionSet{
		FD001: &dto.ModelPrediction{RUL: 118, FailureProbability: 0.04},
		FD002: &dto.ModelPrediction{RUL: 121, FailureProbability: 0.05},
		FD003: &dto.ModelPrediction{
			RUL:                119,
			FailureProbability: 0.03,
			PredictedComponent: "0",
			ComponentProbs:     map[string]float64{"0": 0.9, "1": 0.05, "2": 0.05},
		},
		Ensemble: &dto.EnsembleSummary{AvgRUL: 119.33, MaxFailureProbability: 0.05},
	}
}

type executorFixture struct {
	executor  *Executor
	inference *prognosmocks.MockInferenceRunner
	retriever *prognosmocks.MockCaseRetriever
	publisher *prognosmocks.MockAssessmentPublisher
	metrics   *telemetry.MetricsService
}

func newExecutorFixture(t *testing.T, withPublisher bool) *executorFixture {
	t.Helper()
	lc := logger.NewMockClient()
	textGenerator := &prognosmocks.StubTextGenerator{Text: "generated text"}
	metrics := telemetry.NewMetricsService()

	inference := new(prognosmocks.MockInferenceRunner)
	retriever := new(prognosmocks.MockCaseRetriever)

	scheduler := schedule.NewScheduler(lc)
	scheduler.SetNowFn(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	reporter := NewReporter(textGenerator, lc)
	reporter.SetNowFn(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })

	var publisher *prognosmocks.MockAssessmentPublisher
	fixture := &executorFixture{inference: inference, retriever: retriever, metrics: metrics}
	if withPublisher {
		publisher = new(prognosmocks.MockAssessmentPublisher)
		fixture.publisher = publisher
	}

	executor := NewExecutor(
		inference,
		embedding.NewFailureEmbedder(128, lc),
		retriever,
		diagnosis.NewResolver(testThresholds(), textGenerator, lc),
		risk.NewScorer(testThresholds(), lc),
		scheduler,
		reporter,
		publisherOrNil(publisher),
		metrics,
		lc,
	)
	fixture.executor = executor
	return fixture
}

func publisherOrNil(publisher *prognosmocks.MockAssessmentPublisher) service.AssessmentPublisher {
	if publisher == nil {
		return nil
	}
	return publisher
}

func TestAnalyze_HighRiskScenario(t *testing.T) {
	fixture := newExecutorFixture(t, false)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).Return(highRiskPredictions(), nil)
	fixture.retriever.On("QuerySimilarFailures", mock.Anything, mock.Anything, mock.Anything).
		Return([]dto.FailureCase{{ID: "hist-1", Similarity: 0.85, Component: "HPC", FailureType: "degradation", Severity: "high"}})

	state := fixture.executor.Analyze(context.Background(), testObservation())

	require.NotNil(t, state.RiskAssessment)
	assert.Equal(t, dto.RiskHigh, state.RiskAssessment.RiskLevel)
	assert.Equal(t, "1", state.Diagnosis.ProbableComponent)
	assert.Equal(t, dto.WindowImmediate, state.Schedule.MaintenanceWindow)
	assert.Equal(t, 1, state.Schedule.Priority)
	require.NotNil(t, state.FinalReport)
	assert.Contains(t, state.FinalReport.Summary, "RISK LEVEL: HIGH")
	assert.Regexp(t, `^RPT-\d{14}-[0-9a-f]{8}$`, state.FinalReport.ReportID)

	for _, stage := range []string{StageInference, StageDiagnosis, StageRisk, StageScheduling, StageReport} {
		result := state.StageResult(stage)
		require.NotNil(t, result, stage)
		assert.Equal(t, StageStatusSuccess, result.Status, stage)
	}
	assert.Empty(t, state.Error)
}

func TestAnalyze_HealthyScenario(t *testing.T) {
	fixture := newExecutorFixture(t, false)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).Return(healthyPredictions(), nil)
	fixture.retriever.On("QuerySimilarFailures", mock.Anything, mock.Anything, mock.Anything).
		Return([]dto.FailureCase{})

	state := fixture.executor.Analyze(context.Background(), testObservation())

	assert.Equal(t, dto.RiskLow, state.RiskAssessment.RiskLevel)
	assert.Equal(t, "0", state.Diagnosis.ProbableComponent)
	assert.Equal(t, dto.WindowRoutine, state.Schedule.MaintenanceWindow)
	assert.Equal(t, 3, state.Schedule.Priority)
	assert.Empty(t, state.Diagnosis.Anomalies)
}

func TestAnalyze_InferenceFailureRunsToCompletion(t *testing.T) {
	fixture := newExecutorFixture(t, false)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).
		Return(nil, errors.New("model server unreachable"))

	state := fixture.executor.Analyze(context.Background(), testObservation())

	assert.Equal(t, "model server unreachable", state.Error)
	assert.Equal(t, StageStatusError, state.StageResult(StageInference).Status)
	assert.Equal(t, StageStatusError, state.StageResult(StageDiagnosis).Status)
	assert.Equal(t, StageStatusError, state.StageResult(StageRisk).Status)
	assert.Equal(t, StageStatusError, state.StageResult(StageScheduling).Status)

	// risk reads UNKNOWN, never LOW, when unassessed
	assert.Nil(t, state.RiskAssessment)
	assert.Equal(t, dto.RiskUnknown, state.RiskLevel())

	// degraded diagnosis and schedule keep the response structurally complete
	require.NotNil(t, state.Diagnosis)
	assert.Equal(t, dto.ComponentGeneral, state.Diagnosis.ProbableComponent)
	assert.Equal(t, 0.0, state.Diagnosis.Confidence)
	require.NotNil(t, state.Schedule)
	assert.Equal(t, dto.WindowRoutine, state.Schedule.MaintenanceWindow)
	require.NotNil(t, state.FinalReport)
	assert.Contains(t, state.FinalReport.Summary, "RISK LEVEL: UNKNOWN")

	assert.Equal(t, int64(3), fixture.metrics.Counter(telemetry.StageFailuresCount))
}

func TestAnalyze_RetrievalFailureDegradesGracefully(t *testing.T) {
	fixture := newExecutorFixture(t, false)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).Return(highRiskPredictions(), nil)
	// store down: retriever contract returns an empty list, never an error
	fixture.retriever.On("QuerySimilarFailures", mock.Anything, mock.Anything, mock.Anything).
		Return([]dto.FailureCase{})

	state := fixture.executor.Analyze(context.Background(), testObservation())

	assert.Equal(t, StageStatusSuccess, state.StageResult(StageDiagnosis).Status)
	// classifier is confident, so the diagnosis still resolves
	assert.Equal(t, "1", state.Diagnosis.ProbableComponent)
	assert.Empty(t, state.Diagnosis.SimilarCases)
}

func TestAnalyze_IdempotentDecisions(t *testing.T) {
	fixture := newExecutorFixture(t, false)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).Return(highRiskPredictions(), nil)
	fixture.retriever.On("QuerySimilarFailures", mock.Anything, mock.Anything, mock.Anything).
		Return([]dto.FailureCase{})

	first := fixture.executor.Analyze(context.Background(), testObservation())
	second := fixture.executor.Analyze(context.Background(), testObservation())

	assert.Equal(t, first.RiskAssessment, second.RiskAssessment)
	assert.Equal(t, first.Diagnosis.ProbableComponent, second.Diagnosis.ProbableComponent)
	assert.Equal(t, first.Diagnosis.Confidence, second.Diagnosis.Confidence)
	assert.Equal(t, first.Schedule.MaintenanceWindow, second.Schedule.MaintenanceWindow)
	assert.Equal(t, first.Schedule.Timeline, second.Schedule.Timeline)
}

func TestAnalyze_PublishesAssessment(t *testing.T) {
	fixture := newExecutorFixture(t, true)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).Return(highRiskPredictions(), nil)
	fixture.retriever.On("QuerySimilarFailures", mock.Anything, mock.Anything, mock.Anything).
		Return([]dto.FailureCase{})
	fixture.publisher.On("Publish", mock.Anything).Return(nil)

	state := fixture.executor.Analyze(context.Background(), testObservation())

	fixture.publisher.AssertCalled(t, "Publish", mock.MatchedBy(func(payload interface{}) bool {
		message, ok := payload.(dto.AssessmentMessage)
		return ok &&
			message.RiskLevel == dto.RiskHigh &&
			message.MaintenanceWindow == dto.WindowImmediate &&
			message.CorrelationID == state.CorrelationID &&
			message.ReportID == state.FinalReport.ReportID
	}))
}

func TestAnalyze_PublishFailureDoesNotAffectResult(t *testing.T) {
	fixture := newExecutorFixture(t, true)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).Return(healthyPredictions(), nil)
	fixture.retriever.On("QuerySimilarFailures", mock.Anything, mock.Anything, mock.Anything).
		Return([]dto.FailureCase{})
	fixture.publisher.On("Publish", mock.Anything).Return(errors.New("broker unreachable"))

	state := fixture.executor.Analyze(context.Background(), testObservation())

	assert.Empty(t, state.Error)
	assert.Equal(t, dto.RiskLow, state.RiskAssessment.RiskLevel)
}
