package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers MCP prompts for common Stride workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("weekly_review").
		Description("Review the week's progress against goals and plan the next one.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Weekly Review Session", `Let's review my week. Please:

1. Read my latest reflection from the stride://reflections resource
2. Review my goals using the stride://goals resource
3. Run insights.detect to find bottlenecks, slow categories and stalled goals

Then help me:
- Celebrate what I finished
- Understand which kinds of work I underestimate
- Pick the goals that deserve focus next week
- Choose the top 3 tasks for Monday, using goals.rank to order them`), nil
		})

	srv.Prompt("goal_breakdown").
		Description("Turn a goal into an ordered list of tasks with estimates.").
		Argument("goal", "The goal to break down", true).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			goal := args["goal"]
			if goal == "" {
				goal = "[Please describe the goal you want to break down]"
			}
			return userPrompt("Goal Breakdown Assistant", fmt.Sprintf(`Help me break down this goal into tasks:

**Goal:** %s

Please:
1. Try the goals.breakdown tool first; if it is not configured, break the goal down yourself
2. Aim for 3-8 tasks that can each be finished in one or a few sittings
3. Give each task an estimated duration (e.g. "2 hours", "3 days") and a priority (low, medium, high)
4. Order the tasks so prerequisites come first

Once I approve the plan, create it with goals.create.`, goal)), nil
		})

	srv.Prompt("what_next").
		Description("Decide what to work on right now.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("What Next", `What should I work on next? Please:

1. List my active goals from stride://goals/active
2. Rank the tasks of each with goals.rank
3. Recommend the single highest-value task and explain the score factors
   (urgency, impact, effort, context) in plain words`), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
