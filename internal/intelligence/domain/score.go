package domain

import "time"

// PriorityFactors are the five sub-scores, each nominally 0-10.
type PriorityFactors struct {
	Urgency        int `json:"urgency"`
	Importance     int `json:"importance"`
	Impact         int `json:"impact"`
	Effort         int `json:"effort"`
	UserPreference int `json:"userPreference"`
}

// TaskPriorityScore is the scorer's output for one task.
type TaskPriorityScore struct {
	ID             string          `json:"id"`
	TaskID         string          `json:"taskId"`
	Score          int             `json:"score"`
	Factors        PriorityFactors `json:"factors"`
	Recommendation string          `json:"recommendation"`
	CalculatedAt   time.Time       `json:"calculatedAt"`
}
