/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package dto

// Model family names. FD003 is the only family with a component classifier.
const (
	ModelFD001 = "FD001"
	ModelFD002 = "FD002"
	ModelFD003 = "FD003"
)

// ModelPrediction is the output of one model family: a RUL regression plus a
// binary failure probability. FD003 additionally carries component
// classification output.
type ModelPrediction struct {
	RUL                float64            `json:"rul"`
	FailureProbability float64            `json:"failure_probability"`
	PredictedComponent string             `json:"predicted_component,omitempty"`
	ComponentProbs     map[string]float64 `json:"component_probs,omitempty"`
}

// EnsembleSummary combines the three model families: mean RUL, worst-case
// failure probability.
type EnsembleSummary struct {
	AvgRUL                float64 `json:"avg_rul"`
	MaxFailureProbability float64 `json:"max_failure_probability"`
}

// PredictionSet holds all per-family predictions plus the ensemble summary for
// one observation.
type PredictionSet struct {
	FD001    *ModelPrediction `json:"fd001,omitempty"`
	FD002    *ModelPrediction `json:"fd002,omitempty"`
	FD003    *ModelPrediction `json:"fd003,omitempty"`
	Ensemble *EnsembleSummary `json:"ensemble,omitempty"`
}

// RULValues returns the per-family RULs in the fixed FD001, FD002, FD003
// order, 0 for an absent family.
func (p *PredictionSet) RULValues() []float64 {
	ruls := make([]float64, 3)
	if p == nil {
		return ruls
	}
	if p.FD001 != nil {
		ruls[0] = p.FD001.RUL
	}
	if p.FD002 != nil {
		ruls[1] = p.FD002.RUL
	}
	if p.FD003 != nil {
		ruls[2] = p.FD003.RUL
	}
	return ruls
}
