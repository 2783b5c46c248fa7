/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package dto

// Categorical risk levels. RiskUnknown flags an assessment that could not be
// computed; it is never silently downgraded to RiskLow.
const (
	RiskHigh    = "HIGH"
	RiskMedium  = "MEDIUM"
	RiskLow     = "LOW"
	RiskUnknown = "UNKNOWN"
)

// Risk factor tags contributing to an assessment.
const (
	RiskFactorCriticalFailureProbability = "CRITICAL_FAILURE_PROBABILITY"
	RiskFactorHighFailureProbability     = "HIGH_FAILURE_PROBABILITY"
	RiskFactorCriticalRUL                = "CRITICAL_RUL"
	RiskFactorLowRUL                     = "LOW_RUL"
	RiskFactorModelDisagreement          = "MODEL_DISAGREEMENT"
	RiskFactorNormalOperation            = "NORMAL_OPERATION"
)

// RiskAssessment is the categorical and continuous risk output for one
// observation.
type RiskAssessment struct {
	RiskLevel             string   `json:"risk_level"`
	RiskScore             float64  `json:"risk_score"`
	AvgRUL                float64  `json:"avg_rul"`
	MaxFailureProbability float64  `json:"max_failure_probability"`
	Justification         string   `json:"justification"`
	RiskFactors           []string `json:"risk_factors"`
	ConfidenceScore       float64  `json:"confidence_score"`
}
