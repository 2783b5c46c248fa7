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

type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) string {
	args := m.Called(ctx, prompt)
	return args.String(0)
}

// StubTextGenerator returns a fixed string for every prompt, for tests that
// don't care about prompt contents.
type StubTextGenerator struct {
	Text string
}

func (s *StubTextGenerator) GenerateContent(ctx context.Context, prompt string) string {
	return s.Text
}
