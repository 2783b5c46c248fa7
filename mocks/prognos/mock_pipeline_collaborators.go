/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package prognos

import (
	"context"

	"github.com/stretchr/testify/mock"

	"prognos/common/dto"
)

type MockInferenceRunner struct {
	mock.Mock
}

func (m *MockInferenceRunner) UnifiedInference(ctx context.Context, observation dto.Observation) (*dto.PredictionSet, error) {
	args := m.Called(ctx, observation)
	var predictions *dto.PredictionSet
	if args.Get(0) != nil {
		predictions = args.Get(0).(*dto.PredictionSet)
	}
	return predictions, args.Error(1)
}

type MockCaseRetriever struct {
	mock.Mock
}

func (m *MockCaseRetriever) QuerySimilarFailures(ctx context.Context, embedding []float64, filter map[string]interface{}) []dto.FailureCase {
	args := m.Called(ctx, embedding, filter)
	if args.Get(0) == nil {
		return []dto.FailureCase{}
	}
	return args.Get(0).([]dto.FailureCase)
}

type MockAssessmentPublisher struct {
	mock.Mock
}

func (m *MockAssessmentPublisher) Publish(payload interface{}) error {
	args := m.Called(payload)
	return args.Error(0)
}

func (m *MockAssessmentPublisher) Close() {
	m.Called()
}
