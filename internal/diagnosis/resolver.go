/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package diagnosis

import (
	"context"
	"fmt"
	"strings"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"prognos/common/config"
	"prognos/common/dto"
	"prognos/common/utils"
	"prognos/internal/llm"
)

const (
	// neutral similarity baseline used when no historical cases were found
	neutralSimilarity = 0.5

	hpcAnomalyMessage = "HPC degradation signature detected"
	fanAnomalyMessage = "Fan degradation signature detected"
)

// Resolver turns classifier output plus retrieved historical cases into a
// component diagnosis. The classifier is trusted when confident; otherwise
// historical evidence votes; with neither, the diagnosis stays general rather
// than guessing a component.
type Resolver struct {
	thresholds    config.ThresholdsConfig
	textGenerator llm.TextGenerator
	lc            logger.LoggingClient
}

func NewResolver(thresholds config.ThresholdsConfig, textGenerator llm.TextGenerator, lc logger.LoggingClient) *Resolver {
	return &Resolver{
		thresholds:    thresholds,
		textGenerator: textGenerator,
		lc:            lc,
	}
}

// Resolve applies the guardrail cascade over the classifier prediction and the
// similar historical cases.
func (r *Resolver) Resolve(ctx context.Context, predictions *dto.PredictionSet, similarCases []dto.FailureCase) *dto.Diagnosis {
	predicted := ""
	var componentProbs map[string]float64
	if predictions != nil && predictions.FD003 != nil {
		// classifier labels pass through unchanged; canonical names are only
		// used to match labels internally
		predicted = predictions.FD003.PredictedComponent
		componentProbs = predictions.FD003.ComponentProbs
	}

	maxModelProb := 0.0
	for _, prob := range componentProbs {
		if prob > maxModelProb {
			maxModelProb = prob
		}
	}

	probable := r.resolveComponent(predicted, maxModelProb, len(componentProbs), similarCases)

	diagnosis := &dto.Diagnosis{
		ProbableComponent:      probable,
		PredictedComponent:     predicted,
		ComponentProbabilities: componentProbs,
		SimilarCases:           similarCases,
		Anomalies:              detectAnomalies(componentProbs, r.thresholds.AnomalyEmission),
		Confidence:             r.confidence(maxModelProb, similarCases),
	}
	diagnosis.Reason = r.textGenerator.GenerateContent(ctx, buildReasonPrompt(diagnosis))
	return diagnosis
}

func (r *Resolver) resolveComponent(predicted string, maxModelProb float64, probCount int, similarCases []dto.FailureCase) string {
	if maxModelProb >= r.thresholds.ConfidentTrust && predicted != dto.ComponentUnknown && predicted != "" {
		return predicted
	}
	if len(similarCases) > 0 {
		if vote := pluralityVote(similarCases); vote != "" {
			return vote
		}
	}
	if maxModelProb < r.thresholds.WeakEvidence || probCount == 0 {
		return dto.ComponentGeneral
	}
	if predicted != "" && predicted != dto.ComponentUnknown {
		return predicted
	}
	return dto.ComponentGeneral
}

// pluralityVote picks the component named by the most similar cases. Ties go
// to the component encountered first in retrieval order, which is the closest
// match.
func pluralityVote(similarCases []dto.FailureCase) string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, similarCase := range similarCases {
		component := similarCase.Component
		if component == "" {
			continue
		}
		if _, seen := counts[component]; !seen {
			order = append(order, component)
		}
		counts[component]++
	}
	winner := ""
	best := 0
	for _, component := range order {
		if counts[component] > best {
			best = counts[component]
			winner = component
		}
	}
	return winner
}

func (r *Resolver) confidence(maxModelProb float64, similarCases []dto.FailureCase) float64 {
	avgSimilarity := neutralSimilarity
	if len(similarCases) > 0 {
		similarities := make([]float64, len(similarCases))
		for i, similarCase := range similarCases {
			similarities[i] = similarCase.Similarity
		}
		avgSimilarity = utils.Mean(similarities)
	}
	// each input is clamped independently before the weighted combination
	maxModelProb = utils.Clamp01(maxModelProb)
	avgSimilarity = utils.Clamp01(avgSimilarity)
	return utils.Clamp01(0.7*maxModelProb + 0.3*avgSimilarity)
}

// detectAnomalies keys the degradation tag off the winning class label. A
// healthy winner or a sub-threshold maximum emits nothing, so at most one tag
// is ever produced.
func detectAnomalies(componentProbs map[string]float64, threshold float64) []string {
	anomalies := make([]string, 0)
	winner := ""
	best := -1.0
	for label, prob := range componentProbs {
		if prob > best || (prob == best && label < winner) {
			best = prob
			winner = label
		}
	}
	if best < threshold {
		return anomalies
	}
	switch canonicalComponent(winner) {
	case dto.ComponentHPC:
		anomalies = append(anomalies, hpcAnomalyMessage)
	case dto.ComponentFan:
		anomalies = append(anomalies, fanAnomalyMessage)
	}
	return anomalies
}

// canonicalComponent maps numeric class labels onto the textual component
// names for internal matching; output fields keep the classifier's own
// labels.
func canonicalComponent(label string) string {
	switch label {
	case "0":
		return dto.ComponentHealthy
	case "1":
		return dto.ComponentHPC
	case "2":
		return dto.ComponentFan
	default:
		return label
	}
}

func buildReasonPrompt(diagnosis *dto.Diagnosis) string {
	var b strings.Builder
	b.WriteString("You are a turbofan engine maintenance expert. In two or three sentences, explain this diagnosis to a maintenance planner.\n")
	fmt.Fprintf(&b, "Probable component: %s\n", diagnosis.ProbableComponent)
	if diagnosis.PredictedComponent != "" {
		fmt.Fprintf(&b, "Classifier prediction: %s with probabilities %v\n",
			diagnosis.PredictedComponent, diagnosis.ComponentProbabilities)
	}
	fmt.Fprintf(&b, "Similar historical cases: %d\n", len(diagnosis.SimilarCases))
	for _, similarCase := range diagnosis.SimilarCases {
		fmt.Fprintf(&b, "- case %s: component %s, failure type %s, severity %s, similarity %.2f\n",
			similarCase.ID, similarCase.Component, similarCase.FailureType, similarCase.Severity, similarCase.Similarity)
	}
	if len(diagnosis.Anomalies) > 0 {
		fmt.Fprintf(&b, "Detected anomalies: %s\n", strings.Join(diagnosis.Anomalies, "; "))
	}
	return b.String()
}
