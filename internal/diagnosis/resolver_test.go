/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package diagnosis

import (
	"context"
	"testing"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognos/common/config"
	"prognos/common/dto"
	prognosmocks "prognos/mocks/prognos"
)

func defaultThresholds() config.ThresholdsConfig {
	return config.ThresholdsConfig{
		ConfidentTrust:         0.7,
		WeakEvidence:           0.5,
		AnomalyEmission:        0.4,
		HighFailureProbability: 0.5,
		CriticalRUL:            30,
		MediumRUL:              60,
	}
}

func newTestResolver() *Resolver {
	return NewResolver(defaultThresholds(), &prognosmocks.StubTextGenerator{Text: "stub reason"}, logger.NewMockClient())
}

func predictionsWithComponent(predicted string, probs map[string]float64) *dto.PredictionSet {
	return &dto.PredictionSet{
		FD003:    &dto.ModelPrediction{RUL: 50, PredictedComponent: predicted, ComponentProbs: probs},
		Ensemble: &dto.EnsembleSummary{AvgRUL: 50},
	}
}

func TestResolve_TrustsConfidentClassifier(t *testing.T) {
	predictions := predictionsWithComponent("1", map[string]float64{"0": 0.1, "1": 0.8, "2": 0.1})

	// historical evidence disagrees but the classifier is confident
	cases := []dto.FailureCase{
		{ID: "a", Similarity: 0.9, Component: "Fan"},
		{ID: "b", Similarity: 0.8, Component: "Fan"},
	}

	diagnosis := newTestResolver().Resolve(context.Background(), predictions, cases)
	assert.Equal(t, "1", diagnosis.ProbableComponent)
	assert.Equal(t, "1", diagnosis.PredictedComponent)
	assert.Equal(t, "stub reason", diagnosis.Reason)
}

func TestResolve_PluralityVoteWhenNotConfident(t *testing.T) {
	predictions := predictionsWithComponent("1", map[string]float64{"0": 0.3, "1": 0.6, "2": 0.1})

	cases := []dto.FailureCase{
		{ID: "a", Similarity: 0.9, Component: "Fan"},
		{ID: "b", Similarity: 0.8, Component: "Fan"},
		{ID: "c", Similarity: 0.7, Component: "HPC"},
	}

	diagnosis := newTestResolver().Resolve(context.Background(), predictions, cases)
	assert.Equal(t, dto.ComponentFan, diagnosis.ProbableComponent)
}

func TestResolve_VoteTieBreaksToClosestMatch(t *testing.T) {
	predictions := predictionsWithComponent("1", map[string]float64{"1": 0.6})

	cases := []dto.FailureCase{
		{ID: "a", Similarity: 0.9, Component: "Fan"},
		{ID: "b", Similarity: 0.8, Component: "HPC"},
	}

	diagnosis := newTestResolver().Resolve(context.Background(), predictions, cases)
	assert.Equal(t, dto.ComponentFan, diagnosis.ProbableComponent)
}

func TestResolve_WeakEvidenceFallsBackToGeneral(t *testing.T) {
	predictions := predictionsWithComponent("2", map[string]float64{"0": 0.35, "1": 0.3, "2": 0.35})

	diagnosis := newTestResolver().Resolve(context.Background(), predictions, nil)
	assert.Equal(t, dto.ComponentGeneral, diagnosis.ProbableComponent)
}

func TestResolve_EmptyProbsYieldGeneral(t *testing.T) {
	predictions := predictionsWithComponent("", nil)

	diagnosis := newTestResolver().Resolve(context.Background(), predictions, nil)
	assert.Equal(t, dto.ComponentGeneral, diagnosis.ProbableComponent)
	assert.Empty(t, diagnosis.Anomalies)
}

func TestResolve_ModeratePredictionKept(t *testing.T) {
	predictions := predictionsWithComponent("2", map[string]float64{"0": 0.2, "1": 0.2, "2": 0.6})

	diagnosis := newTestResolver().Resolve(context.Background(), predictions, nil)
	assert.Equal(t, "2", diagnosis.ProbableComponent)
}

func TestResolve_AnomalyTags(t *testing.T) {
	tests := []struct {
		name     string
		probs    map[string]float64
		expected []string
	}{
		{"hpc winner", map[string]float64{"0": 0.3, "1": 0.45, "2": 0.1}, []string{hpcAnomalyMessage}},
		{"fan winner", map[string]float64{"2": 0.5}, []string{fanAnomalyMessage}},
		{"healthy winner suppresses runner-up", map[string]float64{"0": 0.5, "1": 0.45, "2": 0.05}, []string{}},
		{"textual labels", map[string]float64{"HPC": 0.6, "Fan": 0.1}, []string{hpcAnomalyMessage}},
		{"below threshold", map[string]float64{"1": 0.39, "2": 0.2}, []string{}},
	}
	resolver := newTestResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			predictions := predictionsWithComponent("0", tt.probs)
			diagnosis := resolver.Resolve(context.Background(), predictions, nil)
			assert.Equal(t, tt.expected, diagnosis.Anomalies)
			assert.LessOrEqual(t, len(diagnosis.Anomalies), 1)
		})
	}
}

func TestResolve_Confidence(t *testing.T) {
	resolver := newTestResolver()

	t.Run("neutral baseline without cases", func(t *testing.T) {
		predictions := predictionsWithComponent("1", map[string]float64{"1": 0.8})
		diagnosis := resolver.Resolve(context.Background(), predictions, nil)
		assert.InDelta(t, 0.7*0.8+0.3*0.5, diagnosis.Confidence, 1e-9)
	})

	t.Run("average similarity with cases", func(t *testing.T) {
		predictions := predictionsWithComponent("1", map[string]float64{"1": 0.8})
		cases := []dto.FailureCase{
			{ID: "a", Similarity: 0.9, Component: "HPC"},
			{ID: "b", Similarity: 0.7, Component: "HPC"},
		}
		diagnosis := resolver.Resolve(context.Background(), predictions, cases)
		assert.InDelta(t, 0.7*0.8+0.3*0.8, diagnosis.Confidence, 1e-9)
	})

	t.Run("clamped to one", func(t *testing.T) {
		predictions := predictionsWithComponent("1", map[string]float64{"1": 1.5})
		cases := []dto.FailureCase{{ID: "a", Similarity: 1.0, Component: "HPC"}}
		diagnosis := resolver.Resolve(context.Background(), predictions, cases)
		assert.LessOrEqual(t, diagnosis.Confidence, 1.0)
	})

	t.Run("out-of-range probability clamped before weighting", func(t *testing.T) {
		predictions := predictionsWithComponent("1", map[string]float64{"1": 1.2})
		diagnosis := resolver.Resolve(context.Background(), predictions, nil)
		assert.InDelta(t, 0.7*1.0+0.3*0.5, diagnosis.Confidence, 1e-9)
	})
}

func TestResolve_NilPredictions(t *testing.T) {
	diagnosis := newTestResolver().Resolve(context.Background(), nil, nil)
	require.NotNil(t, diagnosis)
	assert.Equal(t, dto.ComponentGeneral, diagnosis.ProbableComponent)
	assert.InDelta(t, 0.15, diagnosis.Confidence, 1e-9)
}
