package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/stride/internal/reflections/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLReflectionRepository implements domain.Repository on either driver.
type SQLReflectionRepository struct {
	conn database.Connection
}

// NewSQLReflectionRepository creates a new reflection repository.
func NewSQLReflectionRepository(conn database.Connection) *SQLReflectionRepository {
	return &SQLReflectionRepository{conn: conn}
}

func (r *SQLReflectionRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

func (r *SQLReflectionRepository) ts(t time.Time) any {
	return database.TimeArg(r.conn.Driver(), t)
}

// Save inserts a reflection.
func (r *SQLReflectionRepository) Save(ctx context.Context, refl *domain.WeeklyReflection) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	achievements, err := marshalList(refl.Achievements)
	if err != nil {
		return err
	}
	challenges, err := marshalList(refl.Challenges)
	if err != nil {
		return err
	}
	recommendations, err := marshalList(refl.Recommendations)
	if err != nil {
		return err
	}

	_, err = exec.Exec(ctx, r.q(`
		INSERT INTO weekly_reflections (
			id, user_id, week_start, week_end, summary,
			achievements, challenges, recommendations,
			goals_completed, tasks_completed, productivity_score, generated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		refl.ID.String(), refl.UserID, r.ts(refl.WeekStart), r.ts(refl.WeekEnd), refl.Summary,
		achievements, challenges, recommendations,
		refl.GoalsCompleted, refl.TasksCompleted, refl.ProductivityScore, r.ts(refl.GeneratedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save reflection: %w", err)
	}
	return nil
}

// FindByUserID returns a user's reflections, newest week first. A limit of
// zero or less returns all of them.
func (r *SQLReflectionRepository) FindByUserID(ctx context.Context, userID string, limit int) ([]*domain.WeeklyReflection, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := `
		SELECT id, user_id, week_start, week_end, summary,
		       achievements, challenges, recommendations,
		       goals_completed, tasks_completed, productivity_score, generated_at
		FROM weekly_reflections
		WHERE user_id = ?
		ORDER BY week_start DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := exec.Query(ctx, r.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reflections: %w", err)
	}
	defer rows.Close()

	out := []*domain.WeeklyReflection{}
	for rows.Next() {
		refl, err := scanReflection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, refl)
	}
	return out, rows.Err()
}

// DeleteOlderThan removes reflections whose week started before cutoff.
func (r *SQLReflectionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	res, err := exec.Exec(ctx, r.q(`DELETE FROM weekly_reflections WHERE week_start < ?`), r.ts(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete reflections: %w", err)
	}
	return res.RowsAffected()
}

func scanReflection(row database.Row) (*domain.WeeklyReflection, error) {
	var (
		refl                                      domain.WeeklyReflection
		id                                        string
		achievements, challenges, recommendations string
		weekStart, weekEnd, generatedAt           database.Timestamp
	)
	err := row.Scan(
		&id, &refl.UserID, &weekStart, &weekEnd, &refl.Summary,
		&achievements, &challenges, &recommendations,
		&refl.GoalsCompleted, &refl.TasksCompleted, &refl.ProductivityScore, &generatedAt,
	)
	if err != nil {
		return nil, err
	}
	if refl.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("reflection has bad id %q: %w", id, err)
	}
	refl.WeekStart = weekStart.Time
	refl.WeekEnd = weekEnd.Time
	refl.GeneratedAt = generatedAt.Time

	for _, f := range []struct {
		raw string
		dst *[]string
	}{
		{achievements, &refl.Achievements},
		{challenges, &refl.Challenges},
		{recommendations, &refl.Recommendations},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("failed to decode reflection %s: %w", id, err)
		}
		if *f.dst == nil {
			*f.dst = []string{}
		}
	}
	return &refl, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
