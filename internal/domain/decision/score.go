// Package decision scores candidate tasks against capacity and risk and
// assembles them into a tiered weekly plan.
package decision

import (
	"time"

	"github.com/ledeberg/tiller/internal/domain/risk"
	"github.com/ledeberg/tiller/internal/domain/task"
)

// Sub-score weights. They sum to 1.0.
const (
	weightDeadline = 0.35
	weightRisk     = 0.30
	weightCapacity = 0.20
	weightLinkage  = 0.15
)

// Score breaks a candidate's weighted score into its components.
type Score struct {
	TaskID      string  `json:"task_id"`
	Total       float64 `json:"total"`
	Deadline    float64 `json:"deadline"`
	KRRisk      float64 `json:"kr_risk"`
	CapacityFit float64 `json:"capacity_fit"`
	Linkage     float64 `json:"linkage"`
}

// deadlineScore maps due-date proximity onto 0-100.
func deadlineScore(t task.Task, now time.Time) float64 {
	if t.DueDate == nil {
		return 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := time.Date(t.DueDate.Year(), t.DueDate.Month(), t.DueDate.Day(), 0, 0, 0, 0, now.Location())
	days := int(due.Sub(today).Hours() / 24)

	switch {
	case days < 0:
		return 100 // overdue
	case days == 0:
		return 90
	case days == 1:
		return 80
	case days <= 3:
		return 60
	case days <= 7:
		return 30
	default:
		return 10
	}
}

// riskScore maps the linked key result's risk level onto 0-100.
func riskScore(t task.Task, signals map[string]risk.Signal) float64 {
	if t.KeyResultID == "" {
		return 0
	}
	sig, ok := signals[t.KeyResultID]
	if !ok {
		return 0
	}
	switch sig.Risk.Level {
	case risk.LevelHigh:
		return 100
	case risk.LevelMedium:
		return 60
	case risk.LevelLow:
		return 20
	}
	return 0
}

// capacityFitScore maps the estimate-to-remaining ratio onto 0-100. A ratio
// above 1 scores zero and marks the candidate infeasible.
func capacityFitScore(estimated, remaining int) float64 {
	if remaining <= 0 || estimated > remaining {
		return 0
	}
	ratio := float64(estimated) / float64(remaining)
	switch {
	case ratio <= 0.25:
		return 100
	case ratio <= 0.5:
		return 80
	case ratio <= 0.75:
		return 50
	default:
		return 20
	}
}

// linkageScore rewards strategic alignment.
func linkageScore(t task.Task) float64 {
	switch {
	case t.ObjectiveID != "" && t.KeyResultID != "":
		return 100
	case t.ObjectiveID != "" || t.KeyResultID != "":
		return 70
	case t.AreaID != "":
		return 30
	default:
		return 0
	}
}

// scoreTask computes all sub-scores and the weighted total.
func scoreTask(t task.Task, remaining, defaultMinutes int, signals map[string]risk.Signal, now time.Time) Score {
	s := Score{
		TaskID:      t.ID,
		Deadline:    deadlineScore(t, now),
		KRRisk:      riskScore(t, signals),
		CapacityFit: capacityFitScore(t.PlannedMinutes(defaultMinutes), remaining),
		Linkage:     linkageScore(t),
	}
	s.Total = s.Deadline*weightDeadline +
		s.KRRisk*weightRisk +
		s.CapacityFit*weightCapacity +
		s.Linkage*weightLinkage
	return s
}
