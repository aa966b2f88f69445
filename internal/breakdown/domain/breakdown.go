// Package domain holds the goal breakdown model produced by a language model.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyGoal is returned when no goal text is provided.
	ErrEmptyGoal = errors.New("goal is required")
	// ErrEmptyTask is returned when no task title is provided.
	ErrEmptyTask = errors.New("task title is required")
	// ErrNotConfigured is returned when no generator backend is available.
	ErrNotConfigured = errors.New("goal breakdown service is not configured")
	// ErrUnavailable is returned while the generator backend is failing.
	ErrUnavailable = errors.New("goal breakdown service is temporarily unavailable")
	// ErrUpstream is returned when the generator backend rejects a request.
	ErrUpstream = errors.New("goal breakdown request failed")
	// ErrMalformedResponse is returned when the generator output cannot be decoded.
	ErrMalformedResponse = errors.New("malformed breakdown response")
)

// GoalOutline is the refined goal proposed by the generator.
type GoalOutline struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	EstimatedDuration string `json:"estimatedDuration"`
	Category          string `json:"category"`
}

// TaskOutline is one suggested task.
type TaskOutline struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	EstimatedDuration string   `json:"estimatedDuration"`
	Priority          string   `json:"priority"`
	Order             int      `json:"order"`
	Subtasks          []string `json:"subtasks,omitempty"`
}

// Milestone marks a checkpoint along the way to the goal.
type Milestone struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TargetDate  string `json:"targetDate,omitempty"`
}

// GoalBreakdown is a goal split into actionable tasks.
type GoalBreakdown struct {
	Goal       GoalOutline   `json:"goal"`
	Tasks      []TaskOutline `json:"tasks"`
	Milestones []Milestone   `json:"milestones,omitempty"`
	Tips       []string      `json:"tips,omitempty"`
}

// Validate checks that the breakdown can be turned into a goal.
func (b *GoalBreakdown) Validate() error {
	if strings.TrimSpace(b.Goal.Title) == "" {
		return fmt.Errorf("%w: goal title missing", ErrMalformedResponse)
	}
	for i, t := range b.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("%w: task %d has no title", ErrMalformedResponse, i+1)
		}
	}
	return nil
}

// Generator turns a free-text goal into a structured breakdown.
type Generator interface {
	Breakdown(ctx context.Context, goal, context string) (*GoalBreakdown, error)
}

// TaskRequest describes a single task to refine.
type TaskRequest struct {
	Title       string `json:"taskTitle"`
	Description string `json:"taskDescription,omitempty"`
	GoalContext string `json:"goalContext,omitempty"`
}

// TaskBreakdown is a task refined into subtasks.
type TaskBreakdown struct {
	RefinedTitle       string   `json:"refinedTitle"`
	RefinedDescription string   `json:"refinedDescription"`
	Subtasks           []string `json:"subtasks"`
	EstimatedDuration  string   `json:"estimatedDuration"`
	Tips               []string `json:"tips,omitempty"`
}

// Validate drops blank subtasks and requires at least one to remain.
func (b *TaskBreakdown) Validate() error {
	subtasks := b.Subtasks[:0]
	for _, s := range b.Subtasks {
		if s = strings.TrimSpace(s); s != "" {
			subtasks = append(subtasks, s)
		}
	}
	b.Subtasks = subtasks
	if len(b.Subtasks) == 0 {
		return fmt.Errorf("%w: no subtasks", ErrMalformedResponse)
	}
	return nil
}

// TaskGenerator splits one task into smaller steps.
type TaskGenerator interface {
	BreakdownTask(ctx context.Context, req TaskRequest) (*TaskBreakdown, error)
}
