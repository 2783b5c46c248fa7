/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package telemetry

import (
	gometrics "github.com/rcrowley/go-metrics"
)

const (
	AnalysesCount      = "pg_analyses_count"
	StageFailuresCount = "pg_stage_failures_count"
	StoreQueriesCount  = "pg_store_queries_count"
	CasesAddedCount    = "pg_cases_added_count"
	PublishErrorsCount = "pg_publish_errors_count"
	AnalysisTimer      = "pg_analysis_duration"
)

// MetricsService owns the process-wide metrics registry. One instance is
// created at startup and shared by reference.
type MetricsService struct {
	registry gometrics.Registry
}

func NewMetricsService() *MetricsService {
	m := new(MetricsService)
	m.registry = gometrics.NewRegistry()
	for _, name := range []string{AnalysesCount, StageFailuresCount, StoreQueriesCount, CasesAddedCount, PublishErrorsCount} {
		gometrics.GetOrRegisterCounter(name, m.registry)
	}
	gometrics.GetOrRegisterTimer(AnalysisTimer, m.registry)
	return m
}

func (m *MetricsService) IncrCounter(name string, delta int64) {
	gometrics.GetOrRegisterCounter(name, m.registry).Inc(delta)
}

func (m *MetricsService) Counter(name string) int64 {
	return gometrics.GetOrRegisterCounter(name, m.registry).Count()
}

func (m *MetricsService) Timer(name string) gometrics.Timer {
	return gometrics.GetOrRegisterTimer(name, m.registry)
}

// Snapshot returns current counter values for the stats endpoint.
func (m *MetricsService) Snapshot() map[string]int64 {
	snapshot := make(map[string]int64)
	m.registry.Each(func(name string, metric interface{}) {
		switch v := metric.(type) {
		case gometrics.Counter:
			snapshot[name] = v.Count()
		case gometrics.Timer:
			snapshot[name] = v.Count()
		}
	})
	return snapshot
}
