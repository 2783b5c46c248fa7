/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package client

const (
	// PrognosAnalyzerServiceKey identifies this service in logs and published
	// messages.
	PrognosAnalyzerServiceKey = "prognos-analyzer"

	// ServiceName is the value reported by the health endpoint.
	ServiceName = "predictive-maintenance-system"
)
