package domain

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/stride/internal/shared/domain"
	"github.com/google/uuid"
)

// Goal is a user objective and the consistency boundary for its tasks.
type Goal struct {
	domain.BaseAggregateRoot
	userID               string
	title                string
	description          string
	category             string
	status               GoalStatus
	priority             Priority
	startDate            time.Time
	targetDate           *time.Time
	estimatedDuration    string
	aiGenerated          bool
	completionPercentage int
	tasks                []*Task
}

// GoalSpec describes a goal to create.
type GoalSpec struct {
	UserID            string
	Title             string
	Description       string
	Category          string
	Priority          string
	EstimatedDuration string
	AIGenerated       bool
	Tasks             []TaskSpec
}

// NewGoal creates a goal in planning status. The target date is derived
// from the estimated duration.
func NewGoal(spec GoalSpec, now time.Time) (*Goal, error) {
	title := strings.TrimSpace(spec.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	priority, err := ParsePriority(spec.Priority)
	if err != nil {
		return nil, err
	}
	category := strings.ToLower(strings.TrimSpace(spec.Category))
	if category == "" {
		category = CategoryOther
	}

	now = now.UTC()
	target := CalculateTargetDate(spec.EstimatedDuration, now)
	g := &Goal{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(now),
		userID:            spec.UserID,
		title:             title,
		description:       strings.TrimSpace(spec.Description),
		category:          category,
		status:            GoalStatusPlanning,
		priority:          priority,
		startDate:         now,
		targetDate:        &target,
		estimatedDuration: spec.EstimatedDuration,
		aiGenerated:       spec.AIGenerated,
	}

	for i, ts := range spec.Tasks {
		if ts.Order == 0 {
			ts.Order = i + 1
		}
		t, err := newTask(g.ID(), ts, now)
		if err != nil {
			return nil, err
		}
		g.tasks = append(g.tasks, t)
	}
	g.sortTasks()

	g.AddDomainEvent(NewGoalCreated(g, now))
	return g, nil
}

// GoalState is the persisted form of a Goal.
type GoalState struct {
	ID                   uuid.UUID
	UserID               string
	Title                string
	Description          string
	Category             string
	Status               GoalStatus
	Priority             Priority
	StartDate            time.Time
	TargetDate           *time.Time
	EstimatedDuration    string
	AIGenerated          bool
	CompletionPercentage int
	Version              int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// RehydrateGoal recreates a goal and its tasks from storage.
func RehydrateGoal(s GoalState, tasks []*Task) *Goal {
	g := &Goal{
		BaseAggregateRoot: domain.RehydrateBaseAggregateRoot(
			domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt), s.Version),
		userID:               s.UserID,
		title:                s.Title,
		description:          s.Description,
		category:             s.Category,
		status:               s.Status,
		priority:             s.Priority,
		startDate:            s.StartDate,
		targetDate:           s.TargetDate,
		estimatedDuration:    s.EstimatedDuration,
		aiGenerated:          s.AIGenerated,
		completionPercentage: s.CompletionPercentage,
		tasks:                tasks,
	}
	g.sortTasks()
	return g
}

// State returns the persisted form of the goal.
func (g *Goal) State() GoalState {
	return GoalState{
		ID:                   g.ID(),
		UserID:               g.userID,
		Title:                g.title,
		Description:          g.description,
		Category:             g.category,
		Status:               g.status,
		Priority:             g.priority,
		StartDate:            g.startDate,
		TargetDate:           g.targetDate,
		EstimatedDuration:    g.estimatedDuration,
		AIGenerated:          g.aiGenerated,
		CompletionPercentage: g.completionPercentage,
		Version:              g.Version(),
		CreatedAt:            g.CreatedAt(),
		UpdatedAt:            g.UpdatedAt(),
	}
}

func (g *Goal) UserID() string               { return g.userID }
func (g *Goal) Title() string                { return g.title }
func (g *Goal) Description() string          { return g.description }
func (g *Goal) Category() string             { return g.category }
func (g *Goal) Status() GoalStatus           { return g.status }
func (g *Goal) Priority() Priority           { return g.priority }
func (g *Goal) StartDate() time.Time         { return g.startDate }
func (g *Goal) TargetDate() *time.Time       { return g.targetDate }
func (g *Goal) EstimatedDuration() string    { return g.estimatedDuration }
func (g *Goal) AIGenerated() bool            { return g.aiGenerated }
func (g *Goal) CompletionPercentage() int    { return g.completionPercentage }
func (g *Goal) Tasks() []*Task               { return g.tasks }
func (g *Goal) IsOwnedBy(userID string) bool { return g.userID == userID }

// Task finds a task by ID.
func (g *Goal) Task(id uuid.UUID) (*Task, bool) {
	for _, t := range g.tasks {
		if t.id == id {
			return t, true
		}
	}
	return nil, false
}

// CompletedTasks counts completed tasks.
func (g *Goal) CompletedTasks() int {
	n := 0
	for _, t := range g.tasks {
		if t.IsCompleted() {
			n++
		}
	}
	return n
}

// GoalChanges holds optional goal field updates; nil fields are left alone.
type GoalChanges struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Category    *string
}

// Update applies changes atomically: nothing changes if any field is invalid.
func (g *Goal) Update(c GoalChanges, now time.Time) error {
	next := *g
	if c.Title != nil {
		title := strings.TrimSpace(*c.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		next.title = title
	}
	if c.Description != nil {
		next.description = strings.TrimSpace(*c.Description)
	}
	if c.Status != nil {
		st, err := ParseGoalStatus(*c.Status)
		if err != nil {
			return err
		}
		next.status = st
	}
	if c.Priority != nil {
		p, err := ParsePriority(*c.Priority)
		if err != nil {
			return err
		}
		next.priority = p
	}
	if c.Category != nil {
		cat := strings.ToLower(strings.TrimSpace(*c.Category))
		if cat == "" {
			cat = CategoryOther
		}
		next.category = cat
	}

	g.title, g.description, g.status = next.title, next.description, next.status
	g.priority, g.category = next.priority, next.category
	g.Touch(now)
	return nil
}

// TaskChanges holds optional task field updates.
type TaskChanges struct {
	Title          *string
	Status         *string
	Priority       *string
	DueDate        *time.Time
	ClearDueDate   bool
	ActualDuration *string
}

// UpdateTask applies changes to one task, recomputes completion and
// records TaskCompleted when the task moves into completed.
func (g *Goal) UpdateTask(taskID uuid.UUID, c TaskChanges, now time.Time) error {
	t, ok := g.Task(taskID)
	if !ok {
		return ErrTaskNotFound
	}
	now = now.UTC()

	var (
		status   = t.status
		priority = t.priority
		title    = t.title
	)
	if c.Title != nil {
		title = strings.TrimSpace(*c.Title)
		if title == "" {
			return ErrEmptyTitle
		}
	}
	if c.Status != nil {
		st, err := ParseTaskStatus(*c.Status)
		if err != nil {
			return err
		}
		status = st
	}
	if c.Priority != nil {
		p, err := ParsePriority(*c.Priority)
		if err != nil {
			return err
		}
		priority = p
	}

	wasCompleted := t.IsCompleted()
	t.title = title
	t.priority = priority
	t.status = status
	if c.DueDate != nil {
		due := c.DueDate.UTC()
		t.dueDate = &due
	} else if c.ClearDueDate {
		t.dueDate = nil
	}
	if c.ActualDuration != nil {
		t.actualDuration = strings.TrimSpace(*c.ActualDuration)
	}
	if status == TaskStatusInProgress && t.startDate == nil {
		t.startDate = &now
	}
	switch {
	case !wasCompleted && t.IsCompleted():
		t.completedAt = &now
	case wasCompleted && !t.IsCompleted():
		t.completedAt = nil
	}
	t.updatedAt = now

	g.recalculateCompletion()
	if g.status == GoalStatusPlanning && status != TaskStatusPending {
		g.status = GoalStatusInProgress
	}
	g.Touch(now)

	if !wasCompleted && t.IsCompleted() {
		g.AddDomainEvent(NewTaskCompleted(g, t, now))
	}
	return nil
}

// MarkDeleted records the deletion event; the repository removes the rows.
func (g *Goal) MarkDeleted(now time.Time) {
	g.AddDomainEvent(NewGoalDeleted(g, now))
}

func (g *Goal) recalculateCompletion() {
	if len(g.tasks) == 0 {
		g.completionPercentage = 0
		return
	}
	g.completionPercentage = int(math.Round(float64(g.CompletedTasks()) / float64(len(g.tasks)) * 100))
}

func (g *Goal) sortTasks() {
	sort.SliceStable(g.tasks, func(i, j int) bool {
		return g.tasks[i].order < g.tasks[j].order
	})
}
