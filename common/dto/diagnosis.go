/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package dto

// Known component labels. The FD003 classifier emits either the numeric class
// index or the textual label depending on how it was trained.
const (
	ComponentHealthy = "Healthy"
	ComponentHPC     = "HPC"
	ComponentFan     = "Fan"
	ComponentUnknown = "Unknown"
	ComponentGeneral = "General"
)

// Failure type classifications for stored historical cases.
const (
	FailureTypeDegradation  = "degradation"
	FailureTypeSudden       = "sudden"
	FailureTypeIntermittent = "intermittent"
	FailureTypeWear         = "wear"
)

// Failure severity levels for stored historical cases.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
)

// FailureCase is one historical failure retrieved from the vector store,
// flattened from the stored metadata.
type FailureCase struct {
	ID                 string                 `json:"id"`
	Similarity         float64                `json:"similarity"`
	Component          string                 `json:"component"`
	FailureType        string                 `json:"failure_type"`
	Severity           string                 `json:"severity"`
	RUL                float64                `json:"rul"`
	FailureProbability float64                `json:"failure_probability"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

// Diagnosis is the resolved component diagnosis for one observation.
type Diagnosis struct {
	ProbableComponent      string             `json:"probable_component"`
	PredictedComponent     string             `json:"predicted_component"`
	ComponentProbabilities map[string]float64 `json:"component_probabilities"`
	SimilarCases           []FailureCase      `json:"similar_cases"`
	Anomalies              []string           `json:"anomalies,omitempty"`
	Reason                 string             `json:"reason"`
	Confidence             float64            `json:"confidence"`
}
