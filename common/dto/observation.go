/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package dto

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	prognosErrors "prognos/common/errors"
)

// ObservationSize is the number of sensor readings the trained model families expect.
const ObservationSize = 24

// Observation is one row of raw turbofan sensor readings.
type Observation []float64

// Validate rejects observations the inference models cannot consume: wrong
// reading count, NaN or infinite values.
func (o Observation) Validate() prognosErrors.PrognosError {
	if len(o) != ObservationSize {
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest,
			fmt.Sprintf("Model expects %d features, got %d", ObservationSize, len(o)))
	}
	for i, v := range o {
		if math.IsNaN(v) {
			return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest,
				fmt.Sprintf("Input contains NaN values at index %d", i))
		}
		if math.IsInf(v, 0) {
			return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest,
				fmt.Sprintf("Input contains Infinite values at index %d", i))
		}
	}
	return nil
}

// ParseObservation accepts the two request payload shapes the analyze API
// supports: a JSON array of numbers, or a comma-separated string such as
// "-0.0007, -0.0004, ..." optionally wrapped in brackets.
func ParseObservation(raw interface{}) (Observation, prognosErrors.PrognosError) {
	switch input := raw.(type) {
	case string:
		cleaned := strings.Trim(strings.TrimSpace(input), "[] ")
		if cleaned == "" {
			return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest, "Empty observation")
		}
		tokens := strings.Split(cleaned, ",")
		observation := make(Observation, 0, len(tokens))
		for _, token := range tokens {
			value, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
			if err != nil {
				return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest,
					fmt.Sprintf("Invalid number format in string input: %s", token))
			}
			observation = append(observation, value)
		}
		return observation, nil
	case []interface{}:
		if len(input) == 0 {
			return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest, "Empty observation")
		}
		observation := make(Observation, 0, len(input))
		for i, element := range input {
			switch v := element.(type) {
			case float64:
				observation = append(observation, v)
			case int:
				observation = append(observation, float64(v))
			case string:
				value, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
				if err != nil {
					return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest,
						fmt.Sprintf("Invalid number format in list input at index %d: %s", i, v))
				}
				observation = append(observation, value)
			default:
				return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest,
					fmt.Sprintf("Unsupported value type at index %d: %T", i, element))
			}
		}
		return observation, nil
	case []float64:
		if len(input) == 0 {
			return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest, "Empty observation")
		}
		return Observation(input), nil
	default:
		return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeBadRequest,
			fmt.Sprintf("Unsupported input type: %T", raw))
	}
}
