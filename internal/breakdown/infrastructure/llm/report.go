package llm

import (
	"context"
	"fmt"
	"strings"

	reflectionDomain "github.com/felixgeelhaar/stride/internal/reflections/domain"
)

const reportSystemPrompt = "You are an AI productivity coach. Be encouraging, specific, and actionable. Respond only with valid JSON."

var _ reflectionDomain.Narrator = (*Client)(nil)

// Narrate asks the model for a summary, insights and recommendations for a
// computed productivity report.
func (c *Client) Narrate(ctx context.Context, report *reflectionDomain.ProductivityReport) (*reflectionDomain.Narrative, error) {
	var narrative reflectionDomain.Narrative
	if err := c.chatJSON(ctx, reportSystemPrompt, ReportPrompt(report), ReportTemperature, &narrative); err != nil {
		return nil, err
	}
	return &narrative, nil
}

// ReportPrompt renders the user message for a productivity report.
func ReportPrompt(r *reflectionDomain.ProductivityReport) string {
	bottlenecks := "None identified"
	if len(r.Bottlenecks) > 0 {
		bottlenecks = strings.Join(r.Bottlenecks, ", ")
	}

	var b strings.Builder
	b.WriteString("Generate a motivational and insightful weekly productivity summary for a user.\n\n")
	fmt.Fprintf(&b, "Week: %s to %s\n\n", r.WeekStart.Format("2006-01-02"), r.WeekEnd.Format("2006-01-02"))
	b.WriteString("Statistics:\n")
	fmt.Fprintf(&b, "- Tasks created: %d\n", r.TasksCreated)
	fmt.Fprintf(&b, "- Tasks completed: %d\n", r.TasksCompleted)
	fmt.Fprintf(&b, "- Active goals: %d\n", r.GoalsActive)
	fmt.Fprintf(&b, "- Goals completed: %d\n", r.GoalsCompleted)
	fmt.Fprintf(&b, "- Overall completion rate: %.1f%%\n", r.CompletionRate)
	fmt.Fprintf(&b, "- On-time completion rate: %.1f%%\n", r.OnTimeRate)
	fmt.Fprintf(&b, "- Top category: %s\n", r.TopCategory)
	fmt.Fprintf(&b, "- Bottlenecks: %s\n", bottlenecks)
	b.WriteString(`
Generate:
1. A 2-3 sentence motivational summary of their week
2. 3 specific insights about their productivity patterns
3. 3 actionable recommendations for improvement

Respond with JSON:
{
  "summary": "motivational summary",
  "insights": ["insight 1", "insight 2", "insight 3"],
  "recommendations": ["recommendation 1", "recommendation 2", "recommendation 3"]
}`)
	return b.String()
}
