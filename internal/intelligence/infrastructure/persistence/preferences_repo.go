package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
)

// SQLPreferencesRepository implements domain.PreferencesRepository on either driver.
type SQLPreferencesRepository struct {
	conn database.Connection
}

// NewSQLPreferencesRepository creates a new preferences repository.
func NewSQLPreferencesRepository(conn database.Connection) *SQLPreferencesRepository {
	return &SQLPreferencesRepository{conn: conn}
}

func (r *SQLPreferencesRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// FindByUserID loads the stored preferences for userID.
func (r *SQLPreferencesRepository) FindByUserID(ctx context.Context, userID string) (domain.UserPreferences, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	var (
		prefs        domain.UserPreferences
		categoryJSON string
		taskTypeJSON string
		lastUpdated  database.Timestamp
	)
	err := exec.QueryRow(ctx, r.q(`
		SELECT user_id, category_performance, task_type_performance,
		       average_task_duration, last_updated, version
		FROM user_preferences
		WHERE user_id = ?`), userID).Scan(
		&prefs.UserID, &categoryJSON, &taskTypeJSON,
		&prefs.AverageTaskDuration, &lastUpdated, &prefs.Version,
	)
	if database.IsNoRows(err) {
		return domain.UserPreferences{}, domain.ErrPreferencesNotFound
	}
	if err != nil {
		return domain.UserPreferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	if err := json.Unmarshal([]byte(categoryJSON), &prefs.CategoryPerformance); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("failed to decode category performance: %w", err)
	}
	if err := json.Unmarshal([]byte(taskTypeJSON), &prefs.TaskTypePerformance); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("failed to decode task type performance: %w", err)
	}
	if prefs.CategoryPerformance == nil {
		prefs.CategoryPerformance = map[string]domain.Performance{}
	}
	if prefs.TaskTypePerformance == nil {
		prefs.TaskTypePerformance = map[string]domain.Performance{}
	}
	prefs.LastUpdated = lastUpdated.Time
	return prefs, nil
}

// Save inserts a new record when prefs.Version is 0 and otherwise updates
// the row only if its version still matches.
func (r *SQLPreferencesRepository) Save(ctx context.Context, prefs domain.UserPreferences) (int, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	categoryJSON, err := marshalBuckets(prefs.CategoryPerformance)
	if err != nil {
		return 0, err
	}
	taskTypeJSON, err := marshalBuckets(prefs.TaskTypePerformance)
	if err != nil {
		return 0, err
	}
	lastUpdated := database.TimeArg(r.conn.Driver(), prefs.LastUpdated)

	var version int
	if prefs.Version == 0 {
		err = exec.QueryRow(ctx, r.q(`
			INSERT INTO user_preferences (
				user_id, category_performance, task_type_performance,
				average_task_duration, last_updated, version
			) VALUES (?, ?, ?, ?, ?, 1)
			ON CONFLICT (user_id) DO NOTHING
			RETURNING version`),
			prefs.UserID, categoryJSON, taskTypeJSON, prefs.AverageTaskDuration, lastUpdated,
		).Scan(&version)
	} else {
		err = exec.QueryRow(ctx, r.q(`
			UPDATE user_preferences
			SET category_performance = ?, task_type_performance = ?,
			    average_task_duration = ?, last_updated = ?, version = version + 1
			WHERE user_id = ? AND version = ?
			RETURNING version`),
			categoryJSON, taskTypeJSON, prefs.AverageTaskDuration, lastUpdated,
			prefs.UserID, prefs.Version,
		).Scan(&version)
	}
	if database.IsNoRows(err) {
		return 0, domain.ErrConcurrentUpdate
	}
	if err != nil {
		return 0, fmt.Errorf("failed to save preferences: %w", err)
	}
	return version, nil
}

func marshalBuckets(m map[string]domain.Performance) (string, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode performance: %w", err)
	}
	return string(data), nil
}
