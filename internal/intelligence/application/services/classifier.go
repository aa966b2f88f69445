package services

import "strings"

// TaskTypeGeneral is returned when no keyword set matches.
const TaskTypeGeneral = "general"

type keywordSet struct {
	taskType string
	keywords []string
}

// Checked in order; the first hit wins.
var taskTypeKeywords = []keywordSet{
	{"design", []string{"design", "ui", "ux", "mockup", "prototype", "wireframe"}},
	{"coding", []string{"code", "develop", "implement", "build", "program", "api"}},
	{"research", []string{"research", "study", "learn", "investigate", "explore", "analyze"}},
	{"writing", []string{"write", "document", "blog", "article", "content", "draft"}},
	{"planning", []string{"plan", "strategy", "roadmap", "outline", "organize"}},
	{"testing", []string{"test", "qa", "debug", "fix", "validate", "verify"}},
	{"meeting", []string{"meeting", "call", "discussion", "sync", "standup"}},
}

// ExtractTaskType classifies a task title by case-insensitive substring match.
func ExtractTaskType(title string) string {
	lower := strings.ToLower(title)
	for _, set := range taskTypeKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.taskType
			}
		}
	}
	return TaskTypeGeneral
}
