package services

// PriorityWeights controls how sub-scores combine into the final score.
type PriorityWeights struct {
	Urgency        float64
	Importance     float64
	Impact         float64
	Effort         float64
	UserPreference float64
}

// RecommendationBand maps a minimum score to a recommendation.
type RecommendationBand struct {
	MinScore int
	Text     string
}

// EngineConfig holds every tunable constant of the engine.
type EngineConfig struct {
	Weights PriorityWeights

	// Recommendations must be sorted by MinScore descending. Scores below
	// the last band get FallbackRecommendation.
	Recommendations        []RecommendationBand
	FallbackRecommendation string

	// Smoothing.
	CompletionDecay float64
	CompletionBoost float64
	MinSpeed        float64
	MaxSpeed        float64

	// Insight thresholds.
	BottleneckRate      float64
	SlowSpeed           float64
	FastSpeed           float64
	AchievementRate     float64
	OverdueTaskLimit    int
	StalledAfterDays    int
	DeadlineExtendSpeed float64
}

// DefaultEngineConfig returns the standard tuning.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights: PriorityWeights{
			Urgency:        0.3,
			Importance:     0.3,
			Impact:         0.2,
			Effort:         0.1,
			UserPreference: 0.1,
		},
		Recommendations: []RecommendationBand{
			{MinScore: 80, Text: "Critical! Do this ASAP"},
			{MinScore: 65, Text: "High priority - schedule today"},
			{MinScore: 50, Text: "Important - complete this week"},
			{MinScore: 35, Text: "Medium priority - plan ahead"},
		},
		FallbackRecommendation: "Low priority - when you have time",
		CompletionDecay:        0.95,
		CompletionBoost:        5,
		MinSpeed:               0.05,
		MaxSpeed:               20,
		BottleneckRate:         50,
		SlowSpeed:              1.5,
		FastSpeed:              0.7,
		AchievementRate:        80,
		OverdueTaskLimit:       3,
		StalledAfterDays:       7,
		DeadlineExtendSpeed:    1.2,
	}
}
