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

	prognosErrors "prognos/common/errors"
	"prognos/internal/vectorstore"
)

type MockVectorStore struct {
	mock.Mock
}

func (m *MockVectorStore) Add(ctx context.Context, id string, embedding []float64, metadata map[string]interface{}) prognosErrors.PrognosError {
	args := m.Called(ctx, id, embedding, metadata)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(prognosErrors.PrognosError)
}

func (m *MockVectorStore) Query(ctx context.Context, embedding []float64, topK int, filter map[string]interface{}) ([]vectorstore.Match, prognosErrors.PrognosError) {
	args := m.Called(ctx, embedding, topK, filter)
	var matches []vectorstore.Match
	if args.Get(0) != nil {
		matches = args.Get(0).([]vectorstore.Match)
	}
	if args.Get(1) == nil {
		return matches, nil
	}
	return matches, args.Get(1).(prognosErrors.PrognosError)
}

func (m *MockVectorStore) Delete(ctx context.Context, id string) prognosErrors.PrognosError {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(prognosErrors.PrognosError)
}
