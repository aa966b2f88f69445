package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/stride/adapter/cli"
	internalApp "github.com/felixgeelhaar/stride/internal/app"
	"github.com/felixgeelhaar/stride/internal/intelligence/domain"
	"github.com/felixgeelhaar/stride/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocalModeTestApp(t *testing.T) *cli.App {
	t.Helper()

	cfg := &config.Config{
		AppEnv:      "test",
		UserID:      "cli-user",
		DatabaseURL: filepath.Join(t.TempDir(), "test.db"),
	}
	container, err := internalApp.NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)

	app := cli.NewApp(container)
	cli.SetApp(app)
	t.Cleanup(func() {
		cli.SetApp(nil)
		_ = container.Close()
	})
	return app
}

func runDetect(t *testing.T, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	detectCmd.SetIn(strings.NewReader(input))
	detectCmd.SetOut(&out)
	detectCmd.SetContext(context.Background())
	err := detectCmd.RunE(detectCmd, nil)
	return out.String(), err
}

const bottleneckInput = `{
  "goals": [],
  "userPreferences": {
    "userId": "cli-user",
    "taskTypePerformance": {
      "coding":  {"completionRate": 30, "averageSpeed": 1},
      "writing": {"completionRate": 20, "averageSpeed": 1}
    }
  }
}`

func TestDetectCmd_Table(t *testing.T) {
	setupLocalModeTestApp(t)
	detectFile, detectLimit, detectJSON = "-", 0, false

	out, err := runDetect(t, bottleneckInput)
	require.NoError(t, err)
	assert.Contains(t, out, "SEVERITY")
	assert.Contains(t, out, "Low completion rate for coding tasks")
	assert.Contains(t, out, "Low completion rate for writing tasks")
}

func TestDetectCmd_JSONWithLimit(t *testing.T) {
	setupLocalModeTestApp(t)
	detectFile, detectLimit, detectJSON = "-", 1, true

	out, err := runDetect(t, bottleneckInput)
	require.NoError(t, err)

	var insights []domain.AIInsight
	require.NoError(t, json.Unmarshal([]byte(out), &insights))
	require.Len(t, insights, 1)
	assert.Equal(t, domain.InsightTypeBottleneck, insights[0].Type)
	assert.Equal(t, "cli-user", insights[0].UserID)
}

func TestDetectCmd_FallsBackToStoredPreferences(t *testing.T) {
	setupLocalModeTestApp(t)
	detectFile, detectLimit, detectJSON = "-", 0, false

	out, err := runDetect(t, `{"goals": []}`)
	require.NoError(t, err)
	assert.Contains(t, out, "No insights yet")
}

func TestDetectCmd_InvalidInput(t *testing.T) {
	setupLocalModeTestApp(t)
	detectFile, detectLimit, detectJSON = "-", 0, false

	_, err := runDetect(t, `{"goals": [`)
	assert.ErrorContains(t, err, "invalid JSON input")
}
