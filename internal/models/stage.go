package models

import "fmt"

type Stage string

const (
	StageTodo       Stage = "Todo"
	StageInProgress Stage = "InProgress"
	StageDone       Stage = "Done"
)

// Stages lists the board columns in display order.
func Stages() []Stage {
	return []Stage{StageTodo, StageInProgress, StageDone}
}

// stageTransitions is the allowed transition table. Done only accepts an
// idempotent rewrite of itself.
var stageTransitions = map[Stage]map[Stage]bool{
	StageTodo:       {StageTodo: true, StageInProgress: true, StageDone: true},
	StageInProgress: {StageTodo: true, StageInProgress: true, StageDone: true},
	StageDone:       {StageDone: true},
}

func ParseStage(s string) (Stage, error) {
	st := Stage(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown stage %q", s)
	}
	return st, nil
}

func (s Stage) Valid() bool {
	_, ok := stageTransitions[s]
	return ok
}

// IsInitial reports whether a task may be created directly in s.
func (s Stage) IsInitial() bool {
	return s == StageTodo || s == StageInProgress
}

func (s Stage) CanTransitionTo(next Stage) bool {
	return stageTransitions[s][next]
}

type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Shift string

const (
	Shift1 Shift = "Shift1"
	Shift2 Shift = "Shift2"
	Shift3 Shift = "Shift3"
)

func (s Shift) Valid() bool {
	switch s {
	case Shift1, Shift2, Shift3:
		return true
	}
	return false
}
