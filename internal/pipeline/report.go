/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package pipeline

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"prognos/common/dto"
	"prognos/internal/llm"
)

const (
	reportTimestampFormat = "2006-01-02 15:04:05"
	reportIDFormat        = "20060102150405"
)

// Reporter assembles the final diagnostic report from whatever the earlier
// stages produced. Missing sections degrade to placeholder text so the report
// is always structurally complete.
type Reporter struct {
	textGenerator llm.TextGenerator
	nowFn         func() time.Time
	lc            logger.LoggingClient
}

func NewReporter(textGenerator llm.TextGenerator, lc logger.LoggingClient) *Reporter {
	return &Reporter{textGenerator: textGenerator, nowFn: time.Now, lc: lc}
}

// SetNowFn overrides the clock, for tests.
func (r *Reporter) SetNowFn(nowFn func() time.Time) {
	r.nowFn = nowFn
}

func (r *Reporter) BuildReport(ctx context.Context, state *PipelineState) *dto.FinalReport {
	now := r.nowFn()
	report := &dto.FinalReport{
		Summary:          r.generateSummary(state),
		DetailedFindings: r.generateDetailedFindings(state),
		MaintenancePlan:  r.generateMaintenancePlan(state),
		TechnicalDetails: r.generateTechnicalDetails(state),
		ReportTimestamp:  now.Format(reportTimestampFormat),
		ReportID:         r.generateReportID(state, now),
	}
	report.Narrative = r.textGenerator.GenerateContent(ctx, buildNarrativePrompt(report))
	return report
}

func (r *Reporter) generateSummary(state *PipelineState) string {
	component := dto.ComponentUnknown
	if state.Diagnosis != nil && state.Diagnosis.ProbableComponent != "" {
		component = state.Diagnosis.ProbableComponent
	}
	window := dto.WindowRoutine
	rationale := "See detailed analysis"
	if state.Schedule != nil {
		window = state.Schedule.MaintenanceWindow
		rationale = state.Schedule.Rationale
	}
	avgRUL := 0.0
	if state.RiskAssessment != nil {
		avgRUL = state.RiskAssessment.AvgRUL
	}

	return fmt.Sprintf("RISK LEVEL: %s\n"+
		"Component Analysis: %s degradation detected\n"+
		"Remaining Useful Life: %.0f cycles\n"+
		"Maintenance Window: %s\n"+
		"Recommendation: %s",
		state.RiskLevel(), component, avgRUL, window, rationale)
}

func (r *Reporter) generateDetailedFindings(state *PipelineState) string {
	avgRUL := 0.0
	maxFailureProb := 0.0
	if state.Predictions != nil && state.Predictions.Ensemble != nil {
		avgRUL = state.Predictions.Ensemble.AvgRUL
		maxFailureProb = state.Predictions.Ensemble.MaxFailureProbability
	}

	component := dto.ComponentUnknown
	confidence := 0.0
	reason := "No diagnostic reasoning available"
	if state.Diagnosis != nil {
		if state.Diagnosis.ProbableComponent != "" {
			component = state.Diagnosis.ProbableComponent
		}
		confidence = state.Diagnosis.Confidence
		if state.Diagnosis.Reason != "" {
			reason = state.Diagnosis.Reason
		}
	}

	justification := "No risk assessment available"
	if state.RiskAssessment != nil {
		justification = state.RiskAssessment.Justification
	}

	findings := []string{
		"=== PREDICTIVE ANALYSIS ===",
		fmt.Sprintf("Ensemble RUL Estimate: %.0f cycles", avgRUL),
		fmt.Sprintf("Maximum Failure Probability: %.1f%%", maxFailureProb*100),
		"",
		"=== DIAGNOSTIC FINDINGS ===",
		fmt.Sprintf("Identified Component: %s", component),
		fmt.Sprintf("Diagnostic Confidence: %.1f%%", confidence*100),
		fmt.Sprintf("Reasoning: %s", reason),
		"",
		"=== RISK FACTORS ===",
		justification,
	}

	if state.Predictions != nil {
		findings = append(findings, "", "=== MODEL PREDICTIONS ===")
		families := []struct {
			name       string
			prediction *dto.ModelPrediction
		}{
			{dto.ModelFD001, state.Predictions.FD001},
			{dto.ModelFD002, state.Predictions.FD002},
			{dto.ModelFD003, state.Predictions.FD003},
		}
		for _, family := range families {
			if family.prediction == nil {
				continue
			}
			findings = append(findings, fmt.Sprintf("%s: RUL=%.0f, P(failure)=%.1f%%",
				family.name, family.prediction.RUL, family.prediction.FailureProbability*100))
		}
	}

	if state.Diagnosis != nil && len(state.Diagnosis.ComponentProbabilities) > 0 {
		findings = append(findings, "", "=== COMPONENT PROBABILITIES ===")
		for _, entry := range sortedProbs(state.Diagnosis.ComponentProbabilities) {
			findings = append(findings, fmt.Sprintf("  %s: %.1f%%", entry.label, entry.prob*100))
		}
	}

	return strings.Join(findings, "\n")
}

func (r *Reporter) generateMaintenancePlan(state *PipelineState) string {
	window := dto.WindowRoutine
	priorityText := "N/A"
	targetDate := "Not specified"
	deadline := "Not specified"
	var recommendations []string
	if state.Schedule != nil {
		window = state.Schedule.MaintenanceWindow
		priorityText = fmt.Sprintf("%d", state.Schedule.Priority)
		targetDate = state.Schedule.Timeline.TargetDate
		deadline = state.Schedule.Timeline.Deadline
		recommendations = state.Schedule.Recommendations
	}

	plan := []string{
		"=== MAINTENANCE ACTION PLAN ===",
		fmt.Sprintf("Priority Level: %s", priorityText),
		fmt.Sprintf("Maintenance Window: %s", window),
		fmt.Sprintf("Target Date: %s", targetDate),
		fmt.Sprintf("Deadline: %s", deadline),
		"",
		"=== ACTIONABLE RECOMMENDATIONS ===",
	}
	for i, recommendation := range recommendations {
		plan = append(plan, fmt.Sprintf("%d. %s", i+1, recommendation))
	}

	if state.Diagnosis != nil && len(state.Diagnosis.SimilarCases) > 0 {
		similarCases := state.Diagnosis.SimilarCases
		plan = append(plan, "", "=== HISTORICAL INSIGHTS ===",
			fmt.Sprintf("Found %d similar failure patterns:", len(similarCases)))
		for i, similarCase := range similarCases {
			if i >= 3 {
				break
			}
			component := similarCase.Component
			if component == "" {
				component = dto.ComponentUnknown
			}
			plan = append(plan, fmt.Sprintf("  %d. %s failure (similarity: %.1f%%)",
				i+1, component, similarCase.Similarity*100))
		}
	}

	return strings.Join(plan, "\n")
}

func (r *Reporter) generateTechnicalDetails(state *PipelineState) map[string]interface{} {
	ensemble := map[string]interface{}{}
	modelPredictions := map[string]interface{}{}
	if state.Predictions != nil {
		if state.Predictions.Ensemble != nil {
			ensemble = map[string]interface{}{
				"avg_rul":                 state.Predictions.Ensemble.AvgRUL,
				"max_failure_probability": state.Predictions.Ensemble.MaxFailureProbability,
			}
		}
		if state.Predictions.FD001 != nil {
			modelPredictions["fd001"] = state.Predictions.FD001
		}
		if state.Predictions.FD002 != nil {
			modelPredictions["fd002"] = state.Predictions.FD002
		}
		if state.Predictions.FD003 != nil {
			modelPredictions["fd003"] = state.Predictions.FD003
		}
	}

	diagnosisMetadata := map[string]interface{}{
		"confidence":          0.0,
		"similar_cases_count": 0,
		"predicted_component": dto.ComponentUnknown,
		"probable_component":  dto.ComponentUnknown,
	}
	if state.Diagnosis != nil {
		diagnosisMetadata["confidence"] = state.Diagnosis.Confidence
		diagnosisMetadata["similar_cases_count"] = len(state.Diagnosis.SimilarCases)
		if state.Diagnosis.PredictedComponent != "" {
			diagnosisMetadata["predicted_component"] = state.Diagnosis.PredictedComponent
		}
		if state.Diagnosis.ProbableComponent != "" {
			diagnosisMetadata["probable_component"] = state.Diagnosis.ProbableComponent
		}
	}

	riskMetrics := map[string]interface{}{
		"risk_level":   state.RiskLevel(),
		"risk_score":   0.0,
		"risk_factors": []string{},
	}
	if state.RiskAssessment != nil {
		riskMetrics["risk_score"] = state.RiskAssessment.RiskScore
		riskMetrics["risk_factors"] = state.RiskAssessment.RiskFactors
	}

	return map[string]interface{}{
		"ensemble_metrics":   ensemble,
		"model_predictions":  modelPredictions,
		"diagnosis_metadata": diagnosisMetadata,
		"risk_metrics":       riskMetrics,
	}
}

// generateReportID derives a stable id from the analysis contents plus the
// report time: RPT-<timestamp>-<hash prefix>.
func (r *Reporter) generateReportID(state *PipelineState, now time.Time) string {
	serialized, err := json.Marshal(state)
	if err != nil {
		serialized = []byte(state.CorrelationID)
	}
	hash := fmt.Sprintf("%x", md5.Sum(serialized))
	return fmt.Sprintf("RPT-%s-%s", now.Format(reportIDFormat), hash[:8])
}

func buildNarrativePrompt(report *dto.FinalReport) string {
	var b strings.Builder
	b.WriteString("You are an expert Predictive Maintenance Analyst for an industrial plant. ")
	b.WriteString("Generate a comprehensive, professional diagnostic report based on the following analysis data.\n\n")
	b.WriteString("ANALYSIS DATA:\n")
	fmt.Fprintf(&b, "%s\n\n%s\n\n%s\n\n", report.Summary, report.DetailedFindings, report.MaintenancePlan)
	b.WriteString("INSTRUCTIONS:\n")
	b.WriteString("1. Write a professional Executive Summary.\n")
	b.WriteString("2. Provide a Detailed Analysis of the findings, explaining the root causes and risk factors.\n")
	b.WriteString("3. Outline a clear Maintenance Action Plan.\n")
	b.WriteString("4. Use a professional, authoritative, yet helpful tone.\n")
	b.WriteString("5. Format with clear headings (e.g., \"Executive Summary\", \"Technical Analysis\", \"Recommendations\") and bullet points.\n")
	b.WriteString("6. Do NOT use markdown code blocks. Just return the formatted text.\n")
	b.WriteString("7. If the risk is HIGH, emphasize the urgency.\n")
	return b.String()
}

type probEntry struct {
	label string
	prob  float64
}

// sortedProbs orders probabilities descending, alphabetical on ties so output
// is deterministic.
func sortedProbs(probs map[string]float64) []probEntry {
	entries := make([]probEntry, 0, len(probs))
	for label, prob := range probs {
		entries = append(entries, probEntry{label: label, prob: prob})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].prob != entries[j].prob {
			return entries[i].prob > entries[j].prob
		}
		return entries[i].label < entries[j].label
	})
	return entries
}
