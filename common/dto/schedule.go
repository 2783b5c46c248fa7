/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package dto

// Maintenance scheduling windows, most to least urgent.
const (
	WindowImmediate = "IMMEDIATE"
	WindowSoon      = "SOON"
	WindowRoutine   = "ROUTINE"
)

// Timeline carries the concrete dates derived from the maintenance window and
// the ensemble RUL.
type Timeline struct {
	TargetDate                string  `json:"target_date"`
	Deadline                  string  `json:"deadline"`
	EstimatedRULAtMaintenance float64 `json:"estimated_rul_at_maintenance"`
	BufferCycles              int     `json:"buffer_cycles"`
}

// MaintenanceSchedule is the actionable scheduling output for one observation.
type MaintenanceSchedule struct {
	MaintenanceWindow string   `json:"maintenance_window"`
	Timeline          Timeline `json:"timeline"`
	Rationale         string   `json:"rationale"`
	Recommendations   []string `json:"recommendations"`
	Priority          int      `json:"priority"`
}
