/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package schedule

import (
	"fmt"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"prognos/common/dto"
	"prognos/common/utils"
)

const timelineDateFormat = "2006-01-02 15:04"

// Scheduler turns a risk assessment and diagnosis into a concrete maintenance
// window with dates, buffer cycles and an action checklist.
type Scheduler struct {
	nowFn func() time.Time
	lc    logger.LoggingClient
}

func NewScheduler(lc logger.LoggingClient) *Scheduler {
	return &Scheduler{nowFn: time.Now, lc: lc}
}

// SetNowFn overrides the clock, for tests.
func (s *Scheduler) SetNowFn(nowFn func() time.Time) {
	s.nowFn = nowFn
}

// Schedule maps the risk level onto a maintenance window and derives the
// timeline from the ensemble RUL.
func (s *Scheduler) Schedule(riskAssessment *dto.RiskAssessment, diagnosis *dto.Diagnosis) *dto.MaintenanceSchedule {
	riskLevel := dto.RiskUnknown
	avgRUL := 100.0
	if riskAssessment != nil {
		riskLevel = riskAssessment.RiskLevel
		avgRUL = riskAssessment.AvgRUL
	}

	component := dto.ComponentUnknown
	if diagnosis != nil && diagnosis.ProbableComponent != "" {
		component = diagnosis.ProbableComponent
	}

	window := maintenanceWindow(riskLevel)
	maintenanceSchedule := &dto.MaintenanceSchedule{
		MaintenanceWindow: window,
		Timeline:          s.calculateTimeline(window, avgRUL),
		Rationale:         rationale(window, riskLevel, avgRUL, component),
		Recommendations:   s.recommendations(window, component, riskAssessment),
		Priority:          priority(window),
	}

	s.lc.Infof("Maintenance schedule completed: %s", window)
	return maintenanceSchedule
}

func maintenanceWindow(riskLevel string) string {
	switch riskLevel {
	case dto.RiskHigh:
		return dto.WindowImmediate
	case dto.RiskMedium:
		return dto.WindowSoon
	default:
		return dto.WindowRoutine
	}
}

func (s *Scheduler) calculateTimeline(window string, avgRUL float64) dto.Timeline {
	now := s.nowFn()

	var targetDate, deadline time.Time
	var bufferCycles int
	switch window {
	case dto.WindowImmediate:
		targetDate = now.Add(24 * time.Hour)
		deadline = now.Add(48 * time.Hour)
		bufferCycles = minInt(10, int(avgRUL*0.2))
	case dto.WindowSoon:
		targetDate = now.AddDate(0, 0, 7)
		deadline = now.AddDate(0, 0, 14)
		bufferCycles = minInt(20, int(avgRUL*0.3))
	default:
		targetDate = now.AddDate(0, 0, 30)
		deadline = now.AddDate(0, 0, 60)
		bufferCycles = minInt(40, int(avgRUL*0.4))
	}

	return dto.Timeline{
		TargetDate:                targetDate.Format(timelineDateFormat),
		Deadline:                  deadline.Format(timelineDateFormat),
		EstimatedRULAtMaintenance: avgRUL - float64(bufferCycles),
		BufferCycles:              bufferCycles,
	}
}

func rationale(window, riskLevel string, avgRUL float64, component string) string {
	switch window {
	case dto.WindowImmediate:
		return fmt.Sprintf("%s risk assessment requires immediate attention. "+
			"Component '%s' showing signs of imminent failure with RUL of %.0f cycles. "+
			"Schedule maintenance within 24-48 hours to prevent unplanned downtime.",
			riskLevel, component, avgRUL)
	case dto.WindowSoon:
		return fmt.Sprintf("%s risk assessment suggests proactive maintenance. "+
			"Component '%s' degradation detected with RUL of %.0f cycles. "+
			"Schedule maintenance within 1-2 weeks to optimize maintenance costs.",
			riskLevel, component, avgRUL)
	default:
		return fmt.Sprintf("%s risk assessment indicates normal operation. "+
			"Component '%s' operating within normal parameters (RUL: %.0f cycles). "+
			"Schedule maintenance during next routine maintenance window.",
			riskLevel, component, avgRUL)
	}
}

func (s *Scheduler) recommendations(window, component string, riskAssessment *dto.RiskAssessment) []string {
	var recommendations []string
	switch window {
	case dto.WindowImmediate:
		recommendations = []string{
			fmt.Sprintf("Inspect %s immediately for signs of failure", component),
			"Prepare replacement parts and tooling",
			"Schedule skilled technician availability",
			"Consider taking unit offline if failure risk is critical",
			"Document all observations for failure analysis",
		}
	case dto.WindowSoon:
		recommendations = []string{
			fmt.Sprintf("Order replacement parts for %s", component),
			"Schedule maintenance during next available window",
			"Monitor sensor readings for any rapid degradation",
			"Prepare maintenance procedures and safety protocols",
			"Allocate appropriate maintenance budget",
		}
	default:
		recommendations = []string{
			fmt.Sprintf("Include %s inspection in next routine maintenance", component),
			"Continue normal monitoring schedule",
			"Update maintenance records",
			"Plan for eventual replacement in maintenance forecast",
		}
	}

	if riskAssessment != nil && utils.Contains(riskAssessment.RiskFactors, dto.RiskFactorModelDisagreement) {
		recommendations = append(recommendations,
			"Note: Model disagreement detected - consider additional diagnostics")
	}
	return recommendations
}

func priority(window string) int {
	switch window {
	case dto.WindowImmediate:
		return 1
	case dto.WindowSoon:
		return 2
	default:
		return 3
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
