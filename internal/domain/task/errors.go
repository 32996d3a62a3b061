package task

import "errors"

var (
	// ErrTaskNotFound indicates the task doesn't exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrMilestoneNotFound indicates the milestone doesn't exist on the task.
	ErrMilestoneNotFound = errors.New("milestone not found")
	// ErrInvalidInput indicates invalid task input.
	ErrInvalidInput = errors.New("invalid task input")
)
