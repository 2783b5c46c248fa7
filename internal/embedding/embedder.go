/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package embedding

import (
	"math"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"prognos/common/dto"
	"prognos/common/utils"
)

const (
	observationBlockSize = 64
	predictionBlockSize  = 64

	// DefaultDim is the native embedding width: one observation block plus one
	// prediction block.
	DefaultDim = observationBlockSize + predictionBlockSize

	rulScale = 100.0
)

// FailureEmbedder turns an observation and its predictions into a fixed-width
// L2-normalized vector for similarity search against stored failure cases.
type FailureEmbedder struct {
	dim int
	lc  logger.LoggingClient
}

func NewFailureEmbedder(dim int, lc logger.LoggingClient) *FailureEmbedder {
	if dim <= 0 {
		dim = DefaultDim
	}
	return &FailureEmbedder{dim: dim, lc: lc}
}

func (e *FailureEmbedder) Dim() int {
	return e.dim
}

// Embed never fails: any internal error yields the all-zero vector, which a
// similarity query matches nothing with.
func (e *FailureEmbedder) Embed(observation dto.Observation, predictions *dto.PredictionSet) (vector []float64) {
	defer func() {
		if r := recover(); r != nil {
			e.lc.Warnf("Embedding failed, returning zero vector: %v", r)
			vector = make([]float64, e.dim)
		}
	}()

	combined := make([]float64, 0, DefaultDim)
	combined = append(combined, observationBlock(observation)...)
	combined = append(combined, predictionBlock(predictions)...)

	vector = project(combined, e.dim)
	l2Normalize(vector)
	return vector
}

// observationBlock packs summary statistics of the readings followed by the
// raw readings themselves, zero-padded to the block width.
func observationBlock(observation dto.Observation) []float64 {
	block := make([]float64, 0, observationBlockSize)
	values := []float64(observation)
	block = append(block,
		utils.Mean(values),
		utils.StdDev(values),
		utils.Min(values),
		utils.Max(values),
		utils.Median(values),
		utils.Percentile(values, 25),
		utils.Percentile(values, 75),
		utils.PeakToPeak(values),
	)
	rawBudget := observationBlockSize - len(block)
	for i := 0; i < rawBudget; i++ {
		if i < len(values) {
			block = append(block, values[i])
		} else {
			block = append(block, 0)
		}
	}
	return block
}

// predictionBlock packs the ensemble summary, the per-family outputs and the
// component probabilities, zero-padded to the block width. RULs are scaled
// down so they live on a comparable scale to the probabilities.
func predictionBlock(predictions *dto.PredictionSet) []float64 {
	block := make([]float64, 0, predictionBlockSize)

	if predictions != nil && predictions.Ensemble != nil {
		block = append(block, predictions.Ensemble.AvgRUL/rulScale, predictions.Ensemble.MaxFailureProbability)
	} else {
		block = append(block, 0, 0)
	}

	var families []*dto.ModelPrediction
	if predictions != nil {
		families = []*dto.ModelPrediction{predictions.FD001, predictions.FD002, predictions.FD003}
	} else {
		families = make([]*dto.ModelPrediction, 3)
	}
	for _, family := range families {
		if family != nil {
			block = append(block, family.RUL/rulScale, family.FailureProbability)
		} else {
			block = append(block, 0, 0)
		}
	}

	block = append(block, componentProbVector(predictions)...)

	for len(block) < predictionBlockSize {
		block = append(block, 0)
	}
	return block[:predictionBlockSize]
}

// componentProbVector emits the component probabilities in the fixed
// healthy/HPC/fan order. The classifier may label classes numerically or
// textually depending on training.
func componentProbVector(predictions *dto.PredictionSet) []float64 {
	probs := make([]float64, 3)
	if predictions == nil || predictions.FD003 == nil || len(predictions.FD003.ComponentProbs) == 0 {
		return probs
	}
	labelSets := [][]string{
		{"0", dto.ComponentHealthy},
		{"1", dto.ComponentHPC},
		{"2", dto.ComponentFan},
	}
	for i, labels := range labelSets {
		for _, label := range labels {
			if p, ok := predictions.FD003.ComponentProbs[label]; ok {
				probs[i] = p
				break
			}
		}
	}
	return probs
}

// project resizes a vector to the target width: zero-pad when growing, average
// contiguous chunks when shrinking.
func project(vector []float64, dim int) []float64 {
	if len(vector) == dim {
		out := make([]float64, dim)
		copy(out, vector)
		return out
	}
	out := make([]float64, dim)
	if len(vector) < dim {
		copy(out, vector)
		return out
	}
	chunk := float64(len(vector)) / float64(dim)
	for i := 0; i < dim; i++ {
		start := int(float64(i) * chunk)
		end := int(float64(i+1) * chunk)
		if end > len(vector) {
			end = len(vector)
		}
		if end <= start {
			end = start + 1
		}
		sum := 0.0
		for _, v := range vector[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func l2Normalize(vector []float64) {
	var norm float64
	for _, v := range vector {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range vector {
		vector[i] /= norm
	}
}
