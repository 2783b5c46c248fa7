/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package risk

import (
	"fmt"
	"strings"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"prognos/common/config"
	"prognos/common/dto"
	"prognos/common/utils"
)

const (
	criticalFailureProbability = 0.7
	criticalRULFactor          = 20.0

	strongAgreementStdDev = 10.0
	disagreementStdDev    = 30.0
)

// Scorer computes the categorical risk level and continuous risk score from
// the ensemble predictions.
type Scorer struct {
	thresholds config.ThresholdsConfig
	lc         logger.LoggingClient
}

func NewScorer(thresholds config.ThresholdsConfig, lc logger.LoggingClient) *Scorer {
	return &Scorer{thresholds: thresholds, lc: lc}
}

// Assess scores one prediction set. The risk score is the worse of the
// RUL-derived risk and the failure probability; the categorical level follows
// the configured thresholds.
func (s *Scorer) Assess(predictions *dto.PredictionSet) *dto.RiskAssessment {
	avgRUL := 100.0
	maxFailureProb := 0.0
	if predictions != nil && predictions.Ensemble != nil {
		avgRUL = predictions.Ensemble.AvgRUL
		maxFailureProb = predictions.Ensemble.MaxFailureProbability
	}

	rulRisk := utils.Clamp01(1 - avgRUL/100)
	riskScore := rulRisk
	if maxFailureProb > riskScore {
		riskScore = maxFailureProb
	}

	var riskLevel string
	switch {
	case maxFailureProb > s.thresholds.HighFailureProbability || avgRUL < s.thresholds.CriticalRUL:
		riskLevel = dto.RiskHigh
	case avgRUL < s.thresholds.MediumRUL:
		riskLevel = dto.RiskMedium
	default:
		riskLevel = dto.RiskLow
	}

	assessment := &dto.RiskAssessment{
		RiskLevel:             riskLevel,
		RiskScore:             riskScore,
		AvgRUL:                avgRUL,
		MaxFailureProbability: maxFailureProb,
		RiskFactors:           s.identifyRiskFactors(avgRUL, maxFailureProb, predictions),
		ConfidenceScore:       utils.Clamp01(1 - riskScore),
	}
	assessment.Justification = s.generateJustification(riskLevel, avgRUL, maxFailureProb, predictions)

	s.lc.Infof("Risk assessment completed: %s (score: %.2f)", riskLevel, riskScore)
	return assessment
}

func (s *Scorer) generateJustification(riskLevel string, avgRUL, maxFailureProb float64, predictions *dto.PredictionSet) string {
	justifications := make([]string, 0, 3)

	if maxFailureProb > s.thresholds.HighFailureProbability {
		justifications = append(justifications,
			fmt.Sprintf("High failure probability detected (%.1f%%)", maxFailureProb*100))
	}

	switch {
	case avgRUL < s.thresholds.CriticalRUL:
		justifications = append(justifications,
			fmt.Sprintf("Critical RUL threshold reached (%.0f cycles)", avgRUL))
	case avgRUL < s.thresholds.MediumRUL:
		justifications = append(justifications,
			fmt.Sprintf("RUL below medium threshold (%.0f cycles)", avgRUL))
	default:
		justifications = append(justifications,
			fmt.Sprintf("RUL within acceptable range (%.0f cycles)", avgRUL))
	}

	ruls := predictions.RULValues()
	rulStd := utils.StdDev(ruls)
	if rulStd < strongAgreementStdDev {
		justifications = append(justifications, "All models show strong agreement")
	} else if rulStd > disagreementStdDev {
		minModel, minRUL, maxModel, maxRUL := extremeModels(ruls)
		justifications = append(justifications,
			fmt.Sprintf("Significant model disagreement (%s predicts %.0f, %s predicts %.0f)",
				minModel, minRUL, maxModel, maxRUL))
	}

	return fmt.Sprintf("%s risk: %s.", riskLevel, strings.Join(justifications, "; "))
}

func (s *Scorer) identifyRiskFactors(avgRUL, maxFailureProb float64, predictions *dto.PredictionSet) []string {
	factors := make([]string, 0, 3)

	if maxFailureProb > criticalFailureProbability {
		factors = append(factors, dto.RiskFactorCriticalFailureProbability)
	} else if maxFailureProb > s.thresholds.HighFailureProbability {
		factors = append(factors, dto.RiskFactorHighFailureProbability)
	}

	if avgRUL < criticalRULFactor {
		factors = append(factors, dto.RiskFactorCriticalRUL)
	} else if avgRUL < s.thresholds.CriticalRUL {
		factors = append(factors, dto.RiskFactorLowRUL)
	}

	if utils.StdDev(predictions.RULValues()) > disagreementStdDev {
		factors = append(factors, dto.RiskFactorModelDisagreement)
	}

	if len(factors) == 0 {
		factors = append(factors, dto.RiskFactorNormalOperation)
	}
	return factors
}

// extremeModels names the families predicting the lowest and highest RUL, in
// the fixed family order on ties.
func extremeModels(ruls []float64) (minModel string, minRUL float64, maxModel string, maxRUL float64) {
	names := []string{dto.ModelFD001, dto.ModelFD002, dto.ModelFD003}
	minIdx, maxIdx := 0, 0
	for i, rul := range ruls {
		if rul < ruls[minIdx] {
			minIdx = i
		}
		if rul > ruls[maxIdx] {
			maxIdx = i
		}
	}
	return names[minIdx], ruls[minIdx], names[maxIdx], ruls[maxIdx]
}
