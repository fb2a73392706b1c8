package planner

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uav-platform/internal/agent/plan"
	"uav-platform/internal/model/llm"
	"uav-platform/internal/tool/builtin"
	"uav-platform/internal/tool/registry"
	"uav-platform/internal/uav"
	"uav-platform/pkg/log"
)

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) GenerateWithContext(ctx context.Context, prompt string, options llm.GenerateOptions) (string, error) {
	return s.reply, s.err
}

func (s *stubLLM) ChatWithContext(ctx context.Context, messages []llm.Message, options llm.GenerateOptions) (string, error) {
	return s.reply, s.err
}

func (s *stubLLM) Model() string    { return "stub" }
func (s *stubLLM) Provider() string { return "stub" }

func testCatalog() *registry.Registry {
	return builtin.NewCatalog(uav.NewClient(uav.Config{BaseURL: "http://localhost:0"}))
}

func TestPlanParsesFencedJSON(t *testing.T) {
	reply := "Here is the plan:\n```json\n" + `{
  "user_intent": "take off",
  "rationale": "single step",
  "steps": [
    {"step_id": "step_1", "tool_name": "take_off", "args": {"drone_id": "drone-1", "altitude": 15}, "dependencies": []}
  ]
}` + "\n```\nDone."
	p := NewLLMPlanner(&stubLLM{reply: reply}, testCatalog(), log.Discard())

	out, err := p.Plan(context.Background(), "take off drone 1")
	require.NoError(t, err)
	assert.NotEqual(t, plan.PlanFailed, out.Status)
	require.Len(t, out.Steps, 1)
	assert.Equal(t, "take_off", out.Steps[0].ToolName)
	assert.Equal(t, plan.StepPending, out.Steps[0].Status)
	n, ok := out.Steps[0].Args["altitude"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 15.0, n)
	assert.Equal(t, "take off drone 1", out.UserIntent)
}

func TestPlanRepairsTrailingCommas(t *testing.T) {
	reply := `{"rationale": "r", "steps": [{"step_id": "step_1", "tool_name": "land", "args": {"drone_id": "drone-1",},},]}`
	p := NewLLMPlanner(&stubLLM{reply: reply}, testCatalog(), log.Discard())

	out, err := p.Plan(context.Background(), "land")
	require.NoError(t, err)
	require.Len(t, out.Steps, 1)
	assert.Equal(t, "land", out.Steps[0].ToolName)
}

func TestPlanLLMErrorYieldsFailedPlan(t *testing.T) {
	p := NewLLMPlanner(&stubLLM{err: errors.New("rate limited")}, testCatalog(), log.Discard())

	out, err := p.Plan(context.Background(), "do something")
	require.NoError(t, err)
	assert.Equal(t, plan.PlanFailed, out.Status)
	assert.Empty(t, out.Steps)
	assert.Contains(t, out.Rationale, "Failed to generate plan")
}

func TestPlanGarbageOutputYieldsFailedPlan(t *testing.T) {
	p := NewLLMPlanner(&stubLLM{reply: "I cannot help with that."}, testCatalog(), log.Discard())

	out, err := p.Plan(context.Background(), "do something")
	require.NoError(t, err)
	assert.Equal(t, plan.PlanFailed, out.Status)
	assert.Empty(t, out.Steps)
}

func TestPlanAssignsMissingStepIDs(t *testing.T) {
	reply := `{"steps": [{"tool_name": "list_drones", "args": {}}, {"tool_name": "get_weather", "args": {}}]}`
	p := NewLLMPlanner(&stubLLM{reply: reply}, testCatalog(), log.Discard())

	out, err := p.Plan(context.Background(), "survey")
	require.NoError(t, err)
	require.Len(t, out.Steps, 2)
	assert.Equal(t, "step_1", out.Steps[0].StepID)
	assert.Equal(t, "step_2", out.Steps[1].StepID)
}

func TestBuildPromptListsTools(t *testing.T) {
	p := NewLLMPlanner(&stubLLM{}, testCatalog(), log.Discard())
	prompt := p.buildPrompt("hi")
	assert.Contains(t, prompt, "**take_off**")
	assert.Contains(t, prompt, "**broadcast**")
	assert.Contains(t, prompt, "User input: hi")
}

func TestExtractJSONStripsComments(t *testing.T) {
	raw, err := extractJSON(`{
  "rationale": "r", // inline note
  /* block */
  "steps": []
}`)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "r", m["rationale"])
}
