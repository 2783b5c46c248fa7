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
)

type MockModelClient struct {
	mock.Mock
}

func (m *MockModelClient) Predict(ctx context.Context, row []float64) (float64, error) {
	args := m.Called(ctx, row)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockModelClient) PredictProba(ctx context.Context, row []float64) ([]string, []float64, error) {
	args := m.Called(ctx, row)
	var classes []string
	if args.Get(0) != nil {
		classes = args.Get(0).([]string)
	}
	var probabilities []float64
	if args.Get(1) != nil {
		probabilities = args.Get(1).([]float64)
	}
	return classes, probabilities, args.Error(2)
}
