package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/stride/internal/goals/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLGoalRepository implements domain.Repository on either driver.
type SQLGoalRepository struct {
	conn database.Connection
}

// NewSQLGoalRepository creates a new goal repository.
func NewSQLGoalRepository(conn database.Connection) *SQLGoalRepository {
	return &SQLGoalRepository{conn: conn}
}

func (r *SQLGoalRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

func (r *SQLGoalRepository) ts(t time.Time) any {
	return database.TimeArg(r.conn.Driver(), t)
}

func (r *SQLGoalRepository) nts(t *time.Time) any {
	return database.NullTimeArg(r.conn.Driver(), t)
}

// Save writes the goal row with a version check and replaces its tasks.
// Outside a unit of work it runs in its own transaction.
func (r *SQLGoalRepository) Save(ctx context.Context, g *domain.Goal) error {
	if _, ok := database.TxInfoFromContext(ctx); ok {
		return r.save(ctx, database.ExecutorFromContext(ctx, r.conn), g)
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	if err := r.save(ctx, tx, g); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *SQLGoalRepository) save(ctx context.Context, exec database.Executor, g *domain.Goal) error {
	s := g.State()

	var (
		version int
		err     error
	)
	if s.Version == 0 {
		err = exec.QueryRow(ctx, r.q(`
			INSERT INTO goals (
				id, user_id, title, description, category, status, priority,
				start_date, target_date, estimated_duration, ai_generated,
				completion_percentage, version, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
			RETURNING version`),
			s.ID.String(), s.UserID, s.Title, s.Description, s.Category, string(s.Status), string(s.Priority),
			r.ts(s.StartDate), r.nts(s.TargetDate), s.EstimatedDuration, r.boolArg(s.AIGenerated),
			s.CompletionPercentage, r.ts(s.CreatedAt), r.ts(s.UpdatedAt),
		).Scan(&version)
	} else {
		err = exec.QueryRow(ctx, r.q(`
			UPDATE goals
			SET title = ?, description = ?, category = ?, status = ?, priority = ?,
			    target_date = ?, estimated_duration = ?, completion_percentage = ?,
			    version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?
			RETURNING version`),
			s.Title, s.Description, s.Category, string(s.Status), string(s.Priority),
			r.nts(s.TargetDate), s.EstimatedDuration, s.CompletionPercentage,
			r.ts(s.UpdatedAt), s.ID.String(), s.Version,
		).Scan(&version)
	}
	if database.IsNoRows(err) {
		return domain.ErrConcurrentUpdate
	}
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}

	if _, err := exec.Exec(ctx, r.q(`DELETE FROM tasks WHERE goal_id = ?`), s.ID.String()); err != nil {
		return fmt.Errorf("failed to replace tasks: %w", err)
	}
	for _, t := range g.Tasks() {
		if err := r.insertTask(ctx, exec, t.State()); err != nil {
			return err
		}
	}

	g.SetVersion(version)
	return nil
}

func (r *SQLGoalRepository) insertTask(ctx context.Context, exec database.Executor, t domain.TaskState) error {
	deps := make([]string, 0, len(t.Dependencies))
	for _, d := range t.Dependencies {
		deps = append(deps, d.String())
	}
	depsJSON, err := json.Marshal(deps)
	if err != nil {
		return err
	}

	_, err = exec.Exec(ctx, r.q(`
		INSERT INTO tasks (
			id, goal_id, title, description, status, priority,
			start_date, due_date, completed_at, estimated_duration, actual_duration,
			dependencies, sort_order, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID.String(), t.GoalID.String(), t.Title, t.Description, string(t.Status), string(t.Priority),
		r.nts(t.StartDate), r.nts(t.DueDate), r.nts(t.CompletedAt), t.EstimatedDuration, t.ActualDuration,
		string(depsJSON), t.Order, r.ts(t.CreatedAt), r.ts(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

const goalColumns = `
	id, user_id, title, description, category, status, priority,
	start_date, target_date, estimated_duration, ai_generated,
	completion_percentage, version, created_at, updated_at`

// FindByID returns domain.ErrGoalNotFound when no goal has id.
func (r *SQLGoalRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Goal, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, r.q(`SELECT `+goalColumns+` FROM goals WHERE id = ?`), id.String())
	state, err := scanGoal(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	tasks, err := r.loadTasks(ctx, exec, `goal_id = ?`, id.String())
	if err != nil {
		return nil, err
	}
	return domain.RehydrateGoal(state, tasks[state.ID]), nil
}

// FindByUserID returns the user's goals, newest first.
func (r *SQLGoalRepository) FindByUserID(ctx context.Context, userID string, status *domain.GoalStatus) ([]*domain.Goal, error) {
	where := `user_id = ?`
	args := []any{userID}
	if status != nil {
		where += ` AND status = ?`
		args = append(args, string(*status))
	}
	return r.findGoals(ctx, where, `created_at DESC, id`, args...)
}

// FindUpdatedSince returns goals of all users updated at or after since.
func (r *SQLGoalRepository) FindUpdatedSince(ctx context.Context, since time.Time) ([]*domain.Goal, error) {
	return r.findGoals(ctx, `updated_at >= ?`, `user_id, created_at`, r.ts(since))
}

func (r *SQLGoalRepository) findGoals(ctx context.Context, where, orderBy string, args ...any) ([]*domain.Goal, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, r.q(`SELECT `+goalColumns+` FROM goals WHERE `+where+` ORDER BY `+orderBy), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	var states []domain.GoalState
	for rows.Next() {
		s, err := scanGoal(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(states) == 0 {
		return []*domain.Goal{}, nil
	}

	tasks, err := r.loadTasks(ctx, exec, `goal_id IN (SELECT id FROM goals WHERE `+where+`)`, args...)
	if err != nil {
		return nil, err
	}

	goals := make([]*domain.Goal, 0, len(states))
	for _, s := range states {
		goals = append(goals, domain.RehydrateGoal(s, tasks[s.ID]))
	}
	return goals, nil
}

// Delete removes the goal and its tasks.
func (r *SQLGoalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	if _, err := exec.Exec(ctx, r.q(`DELETE FROM tasks WHERE goal_id = ?`), id.String()); err != nil {
		return err
	}
	res, err := exec.Exec(ctx, r.q(`DELETE FROM goals WHERE id = ?`), id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func (r *SQLGoalRepository) loadTasks(ctx context.Context, exec database.Executor, where string, args ...any) (map[uuid.UUID][]*domain.Task, error) {
	rows, err := exec.Query(ctx, r.q(`
		SELECT id, goal_id, title, description, status, priority,
		       start_date, due_date, completed_at, estimated_duration, actual_duration,
		       dependencies, sort_order, created_at, updated_at
		FROM tasks
		WHERE `+where+`
		ORDER BY goal_id, sort_order`), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]*domain.Task)
	for rows.Next() {
		s, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out[s.GoalID] = append(out[s.GoalID], domain.RehydrateTask(s))
	}
	return out, rows.Err()
}

func scanGoal(row database.Row) (domain.GoalState, error) {
	var (
		s                     domain.GoalState
		id                    string
		status, priority      string
		aiGenerated           any
		startDate, targetDate database.Timestamp
		createdAt, updatedAt  database.Timestamp
	)
	err := row.Scan(
		&id, &s.UserID, &s.Title, &s.Description, &s.Category, &status, &priority,
		&startDate, &targetDate, &s.EstimatedDuration, &aiGenerated,
		&s.CompletionPercentage, &s.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return s, err
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return s, fmt.Errorf("goal has bad id %q: %w", id, err)
	}
	s.Status = domain.GoalStatus(status)
	s.Priority = domain.Priority(priority)
	s.AIGenerated = truthy(aiGenerated)
	s.StartDate = startDate.Time
	s.TargetDate = targetDate.Ptr()
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return s, nil
}

func scanTask(row database.Row) (domain.TaskState, error) {
	var (
		s                               domain.TaskState
		id, goalID, status, priority    string
		deps                            string
		startDate, dueDate, completedAt database.Timestamp
		createdAt, updatedAt            database.Timestamp
	)
	err := row.Scan(
		&id, &goalID, &s.Title, &s.Description, &status, &priority,
		&startDate, &dueDate, &completedAt, &s.EstimatedDuration, &s.ActualDuration,
		&deps, &s.Order, &createdAt, &updatedAt,
	)
	if err != nil {
		return s, err
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return s, fmt.Errorf("task has bad id %q: %w", id, err)
	}
	if s.GoalID, err = uuid.Parse(goalID); err != nil {
		return s, fmt.Errorf("task %s has bad goal id: %w", id, err)
	}

	var depIDs []string
	if strings.TrimSpace(deps) != "" {
		if err := json.Unmarshal([]byte(deps), &depIDs); err != nil {
			return s, fmt.Errorf("task %s has bad dependencies: %w", id, err)
		}
	}
	for _, d := range depIDs {
		depID, err := uuid.Parse(d)
		if err != nil {
			continue
		}
		s.Dependencies = append(s.Dependencies, depID)
	}

	s.Status = domain.TaskStatus(status)
	s.Priority = domain.Priority(priority)
	s.StartDate = startDate.Ptr()
	s.DueDate = dueDate.Ptr()
	s.CompletedAt = completedAt.Ptr()
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time
	return s, nil
}

// SQLite has no boolean type; Postgres gets a native bool.
func (r *SQLGoalRepository) boolArg(b bool) any {
	if r.conn.Driver() == database.DriverPostgres {
		return b
	}
	if b {
		return 1
	}
	return 0
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int64:
		return b != 0
	case int32:
		return b != 0
	case int:
		return b != 0
	case []byte:
		return string(b) == "1" || string(b) == "true"
	case string:
		return b == "1" || b == "true"
	case sql.NullBool:
		return b.Valid && b.Bool
	}
	return false
}
