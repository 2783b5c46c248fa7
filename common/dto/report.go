/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package dto

// FinalReport is the assembled diagnostic report. Narrative is advisory text
// from the text-generation collaborator; all decision fields live in the other
// pipeline outputs.
type FinalReport struct {
	Summary          string                 `json:"summary"`
	DetailedFindings string                 `json:"detailed_findings"`
	MaintenancePlan  string                 `json:"maintenance_plan"`
	TechnicalDetails map[string]interface{} `json:"technical_details"`
	ReportTimestamp  string                 `json:"report_timestamp"`
	ReportID         string                 `json:"report_id"`
	Narrative        string                 `json:"narrative"`
}

// AssessmentMessage is the payload published to the message bus once an
// analysis completes.
type AssessmentMessage struct {
	CorrelationID     string              `json:"correlation_id"`
	ServiceKey        string              `json:"service_key"`
	RiskLevel         string              `json:"risk_level"`
	ProbableComponent string              `json:"probable_component"`
	AvgRUL            float64             `json:"avg_rul"`
	MaintenanceWindow string              `json:"maintenance_window"`
	Priority          int                 `json:"priority"`
	ReportID          string              `json:"report_id"`
	Predictions       *PredictionSet      `json:"predictions,omitempty"`
	RiskAssessment    *RiskAssessment     `json:"risk_assessment,omitempty"`
	Schedule          *MaintenanceSchedule `json:"maintenance_schedule,omitempty"`
	Created           int64               `json:"created"`
}
