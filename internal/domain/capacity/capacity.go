// Package capacity converts working-time configuration into minute budgets
// and measures committed load against them. Everything here is a pure
// function over pre-clamped config; nothing errors.
package capacity

import (
	"math"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/task"
)

// Capacity is a derived minute budget. It is recomputed on every read and
// never persisted.
type Capacity struct {
	TotalMinutes     int `json:"total_minutes"`
	AvailableMinutes int `json:"available_minutes"`
	UsableMinutes    int `json:"usable_minutes"`
}

// Overload describes committed load measured against a usable budget.
type Overload struct {
	IsOverloaded bool `json:"is_overloaded"`
	Percentage   int  `json:"percentage"`
	ExcessMin    int  `json:"excess_minutes"`
}

// Daily computes the per-day budget: total work minutes, minutes left after
// breaks, and the usable floor after the safety buffer.
func Daily(cfg config.CapacityConfig) Capacity {
	total := cfg.WorkHoursPerDay * 60
	available := total - cfg.BreakMinutesPerDay
	if available < 0 {
		available = 0
	}
	usable := int(math.Floor(float64(available) * (1 - float64(cfg.BufferPercent)/100)))
	return Capacity{
		TotalMinutes:     total,
		AvailableMinutes: available,
		UsableMinutes:    usable,
	}
}

// Weekly multiplies the daily budget by configured work days.
func Weekly(cfg config.CapacityConfig) Capacity {
	daily := Daily(cfg)
	return Capacity{
		TotalMinutes:     daily.TotalMinutes * cfg.WorkDaysPerWeek,
		AvailableMinutes: daily.AvailableMinutes * cfg.WorkDaysPerWeek,
		UsableMinutes:    daily.UsableMinutes * cfg.WorkDaysPerWeek,
	}
}

// WeeklyLoad sums committed minutes for the given week across active tasks.
// Projects contribute their committed, incomplete milestone estimates; simple
// tasks contribute a flat default unless they carry their own estimate.
func WeeklyLoad(tasks []task.Task, week string, defaultMinutes int) int {
	total := 0
	for _, t := range tasks {
		if !t.CommittedThisWeek(week) {
			continue
		}
		total += t.CommittedMinutes(defaultMinutes)
	}
	return total
}

// DetectOverload measures committed minutes against a usable budget.
func DetectOverload(committed, usable int) Overload {
	o := Overload{}
	if usable > 0 {
		o.Percentage = int(math.Round(float64(committed) / float64(usable) * 100))
	} else if committed > 0 {
		o.Percentage = 100
	}
	if committed > usable {
		o.IsOverloaded = true
		o.ExcessMin = committed - usable
	}
	return o
}
