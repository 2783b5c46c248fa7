/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package inference

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Normalization methods for the FD003 feature view.
const (
	NormalizationZScore = "zscore"
	NormalizationMinMax = "minmax"
)

// SensorNormalizer rescales raw sensor readings using per-feature statistics
// captured during training.
type SensorNormalizer struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
	Min  []float64 `json:"min"`
	Max  []float64 `json:"max"`
}

// LoadSensorNormalizer reads the statistics file written at training time.
// A missing file is not an error for the caller: the FD003 models then run on
// raw features at reduced accuracy.
func LoadSensorNormalizer(statsFile string) (*SensorNormalizer, error) {
	data, err := os.ReadFile(statsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read normalizer stats file %s", statsFile)
	}
	normalizer := new(SensorNormalizer)
	if err := json.Unmarshal(data, normalizer); err != nil {
		return nil, errors.Wrapf(err, "failed to parse normalizer stats file %s", statsFile)
	}
	if len(normalizer.Mean) == 0 || len(normalizer.Mean) != len(normalizer.Std) {
		return nil, errors.Errorf("normalizer stats file %s has inconsistent mean/std lengths", statsFile)
	}
	return normalizer, nil
}

// Normalize applies the named method. Unrecognized methods fall back to
// z-score, the method the shipped model stats were fitted for.
func (n *SensorNormalizer) Normalize(row []float64, method string) []float64 {
	if method == NormalizationMinMax {
		return n.MinMax(row)
	}
	return n.ZScore(row)
}

// ZScore transforms a row with (x - mean) / std. A zero std is treated as 1
// so constant features pass through unscaled.
func (n *SensorNormalizer) ZScore(row []float64) []float64 {
	normalized := make([]float64, len(row))
	for i, v := range row {
		if i >= len(n.Mean) {
			normalized[i] = v
			continue
		}
		std := n.Std[i]
		if std == 0 {
			std = 1
		}
		normalized[i] = (v - n.Mean[i]) / std
	}
	return normalized
}

// MinMax transforms a row into [0, 1] using the recorded min/max range. A zero
// range is treated as 1.
func (n *SensorNormalizer) MinMax(row []float64) []float64 {
	normalized := make([]float64, len(row))
	for i, v := range row {
		if i >= len(n.Min) || i >= len(n.Max) {
			normalized[i] = v
			continue
		}
		rangeVal := n.Max[i] - n.Min[i]
		if rangeVal == 0 {
			rangeVal = 1
		}
		normalized[i] = (v - n.Min[i]) / rangeVal
	}
	return normalized
}
