/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package inference

import (
	"context"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/pkg/errors"

	"prognos/common/config"
	"prognos/common/dto"
)

// ModelFamily groups the clients of one trained model family. Component is nil
// for families without a component classifier.
type ModelFamily struct {
	Regressor ModelClient
	Failure   ModelClient
	Component ModelClient
}

// UnifiedInferenceAdapter fans one observation out to all three model families
// and folds the results into a PredictionSet with the ensemble summary.
type UnifiedInferenceAdapter struct {
	fd001         ModelFamily
	fd002         ModelFamily
	fd003         ModelFamily
	normalizer    *SensorNormalizer
	normalization string
	lc            logger.LoggingClient
}

func NewUnifiedInferenceAdapter(fd001, fd002, fd003 ModelFamily, normalizer *SensorNormalizer, lc logger.LoggingClient) *UnifiedInferenceAdapter {
	return &UnifiedInferenceAdapter{
		fd001:         fd001,
		fd002:         fd002,
		fd003:         fd003,
		normalizer:    normalizer,
		normalization: NormalizationZScore,
		lc:            lc,
	}
}

// SetNormalizationMethod selects how the FD003 feature view is rescaled.
func (a *UnifiedInferenceAdapter) SetNormalizationMethod(method string) {
	if method != "" {
		a.normalization = method
	}
}

// NewAdapterFromConfig builds the per-family HTTP clients from the configured
// endpoints.
func NewAdapterFromConfig(modelsConfig config.ModelsConfig, lc logger.LoggingClient) *UnifiedInferenceAdapter {
	timeout := time.Duration(modelsConfig.RequestTimeoutSecs) * time.Second
	cacheTTL := time.Duration(modelsConfig.CacheTTLSecs) * time.Second

	buildFamily := func(endpoints config.ModelEndpoints) ModelFamily {
		family := ModelFamily{
			Regressor: NewHTTPModelClient(endpoints.RegressorURL, timeout, cacheTTL, lc),
			Failure:   NewHTTPModelClient(endpoints.FailureURL, timeout, cacheTTL, lc),
		}
		if endpoints.ComponentURL != "" {
			family.Component = NewHTTPModelClient(endpoints.ComponentURL, timeout, cacheTTL, lc)
		}
		return family
	}

	var normalizer *SensorNormalizer
	if modelsConfig.NormalizerStatsFile != "" {
		loaded, err := LoadSensorNormalizer(modelsConfig.NormalizerStatsFile)
		if err != nil {
			lc.Warnf("Normalizer stats unavailable, FD003 will use raw features: %v", err)
		} else {
			normalizer = loaded
		}
	}

	adapter := NewUnifiedInferenceAdapter(
		buildFamily(modelsConfig.FD001),
		buildFamily(modelsConfig.FD002),
		buildFamily(modelsConfig.FD003),
		normalizer,
		lc,
	)
	adapter.SetNormalizationMethod(modelsConfig.NormalizationMethod)
	return adapter
}

// UnifiedInference runs the observation through every model family. RULs are
// clamped at zero, the ensemble takes the mean RUL and the worst failure
// probability across families.
func (a *UnifiedInferenceAdapter) UnifiedInference(ctx context.Context, observation dto.Observation) (*dto.PredictionSet, error) {
	if validationErr := observation.Validate(); validationErr != nil {
		return nil, errors.New(validationErr.Message())
	}

	row := []float64(observation)

	fd001, err := a.runFamily(ctx, dto.ModelFD001, a.fd001, row)
	if err != nil {
		return nil, err
	}
	fd002, err := a.runFamily(ctx, dto.ModelFD002, a.fd002, row)
	if err != nil {
		return nil, err
	}

	// The whole FD003 family was trained on a separately normalized feature
	// view. Without the training stats it sees raw features at reduced
	// accuracy.
	fd003Row := row
	if a.normalizer != nil {
		fd003Row = a.normalizer.Normalize(row, a.normalization)
	}
	fd003, err := a.runFamily(ctx, dto.ModelFD003, a.fd003, fd003Row)
	if err != nil {
		return nil, err
	}

	predictions := &dto.PredictionSet{
		FD001: fd001,
		FD002: fd002,
		FD003: fd003,
	}
	predictions.Ensemble = buildEnsemble(fd001, fd002, fd003)
	return predictions, nil
}

func (a *UnifiedInferenceAdapter) runFamily(ctx context.Context, name string, family ModelFamily, row []float64) (*dto.ModelPrediction, error) {
	rul, err := family.Regressor.Predict(ctx, row)
	if err != nil {
		return nil, errors.Wrapf(err, "%s regressor failed", name)
	}
	if rul < 0 {
		rul = 0
	}

	classes, probabilities, err := family.Failure.PredictProba(ctx, row)
	if err != nil {
		return nil, errors.Wrapf(err, "%s failure classifier failed", name)
	}

	prediction := &dto.ModelPrediction{
		RUL:                rul,
		FailureProbability: positiveClassProbability(classes, probabilities),
	}

	if family.Component != nil {
		componentClasses, componentProbs, err := family.Component.PredictProba(ctx, row)
		if err != nil {
			return nil, errors.Wrapf(err, "%s component classifier failed", name)
		}
		prediction.ComponentProbs = make(map[string]float64, len(componentProbs))
		bestProb := -1.0
		for i, prob := range componentProbs {
			label := componentLabel(componentClasses, i)
			prediction.ComponentProbs[label] = prob
			if prob > bestProb {
				bestProb = prob
				prediction.PredictedComponent = label
			}
		}
	}
	return prediction, nil
}

// positiveClassProbability picks the probability of the failing class. Class
// labels come back from the serving layer as strings; the failing class is
// labeled "1" in the training data.
func positiveClassProbability(classes []string, probabilities []float64) float64 {
	for i, class := range classes {
		if class == "1" && i < len(probabilities) {
			return probabilities[i]
		}
	}
	if len(probabilities) >= 2 {
		return probabilities[1]
	}
	if len(probabilities) == 1 {
		return probabilities[0]
	}
	return 0
}

func componentLabel(classes []string, index int) string {
	if index < len(classes) && classes[index] != "" {
		return classes[index]
	}
	// serving layers that omit class labels imply positional labels
	switch index {
	case 0:
		return "0"
	case 1:
		return "1"
	default:
		return "2"
	}
}

func buildEnsemble(predictions ...*dto.ModelPrediction) *dto.EnsembleSummary {
	ensemble := new(dto.EnsembleSummary)
	count := 0
	for _, p := range predictions {
		if p == nil {
			continue
		}
		ensemble.AvgRUL += p.RUL
		if p.FailureProbability > ensemble.MaxFailureProbability {
			ensemble.MaxFailureProbability = p.FailureProbability
		}
		count++
	}
	if count > 0 {
		ensemble.AvgRUL /= float64(count)
	}
	return ensemble
}
