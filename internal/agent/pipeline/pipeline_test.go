// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uav-platform/internal/agent/plan"
	"uav-platform/internal/storage/history"
	"uav-platform/pkg/log"
)

type fakePlanner struct {
	plan *plan.Plan
	err  error
}

func (f *fakePlanner) Plan(ctx context.Context, userInput string) (*plan.Plan, error) {
	return f.plan, f.err
}

type fakeValidator struct {
	out *plan.ValidatedPlan
}

func (f *fakeValidator) ValidateAndFix(ctx context.Context, p *plan.Plan) *plan.ValidatedPlan {
	if f.out != nil {
		return f.out
	}
	steps := make([]plan.PlanStep, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = s.Clone()
		steps[i].Status = plan.StepValidated
	}
	return &plan.ValidatedPlan{PlanID: p.PlanID, NormalizedSteps: steps, IsValid: true}
}

type fakeExecutor struct {
	report *plan.ExecutionReport
	panics bool
	calls  int
}

func (f *fakeExecutor) Execute(ctx context.Context, vp *plan.ValidatedPlan) *plan.ExecutionReport {
	f.calls++
	if f.panics {
		panic("executor blew up")
	}
	if f.report != nil {
		return f.report
	}
	return &plan.ExecutionReport{
		PlanID:      vp.PlanID,
		FinalStatus: plan.ExecCompleted,
		Summary:     "Successfully executed all 1 steps.",
		ExecutionResults: []plan.ExecutionResult{
			{StepID: "step_1", Success: true},
		},
	}
}

func goodPlan() *plan.Plan {
	p := plan.NewPlan("take off")
	p.Steps = []plan.PlanStep{{
		StepID:   "step_1",
		ToolName: "take_off",
		Args:     plan.Args{"drone_id": plan.StringValue("drone-1")},
		Status:   plan.StepPending,
	}}
	return p
}

func TestRunHappyPath(t *testing.T) {
	store := history.NewMemoryStore(10)
	exec := &fakeExecutor{}
	c := New(&fakePlanner{plan: goodPlan()}, &fakeValidator{}, exec, store, log.Discard())

	res := c.Run(context.Background(), "take off drone 1")
	assert.True(t, res.Success)
	assert.Contains(t, res.Output, "Successfully executed all 1 steps.")
	require.NotNil(t, res.Plan)
	require.NotNil(t, res.Validation)
	require.NotNil(t, res.Execution)
	assert.Equal(t, 1, exec.calls)

	recs, _ := store.Recent(context.Background(), 0)
	require.Len(t, recs, 1)
	assert.Equal(t, "take off drone 1", recs[0].Input)
	assert.Equal(t, plan.ExecCompleted, recs[0].FinalStatus)
	assert.Equal(t, res.Plan.PlanID, recs[0].PlanID)
}

func TestRunEmptyPlanIsPlanningFailure(t *testing.T) {
	store := history.NewMemoryStore(10)
	exec := &fakeExecutor{}
	empty := plan.NewPlan("gibberish")
	empty.Rationale = "Failed to generate plan: no JSON found"
	empty.Status = plan.PlanFailed
	c := New(&fakePlanner{plan: empty}, &fakeValidator{}, exec, store, log.Discard())

	res := c.Run(context.Background(), "gibberish")
	assert.False(t, res.Success)
	assert.Contains(t, res.Output, "Failed to generate a plan")
	assert.Contains(t, res.Output, "no JSON found")
	assert.Nil(t, res.Validation, "validation must not run for a failed plan")
	assert.Nil(t, res.Execution)
	assert.Zero(t, exec.calls)

	recs, _ := store.Recent(context.Background(), 0)
	require.Len(t, recs, 1)
	assert.Equal(t, "planning_failed", recs[0].FinalStatus)
}

func TestRunPlannerErrorIsPlanningFailure(t *testing.T) {
	c := New(&fakePlanner{err: errors.New("LLM unreachable")}, &fakeValidator{}, &fakeExecutor{}, nil, log.Discard())

	res := c.Run(context.Background(), "anything")
	assert.False(t, res.Success)
	assert.Contains(t, res.Output, "LLM unreachable")
}

func TestRunInvalidPlanIsTerminal(t *testing.T) {
	store := history.NewMemoryStore(10)
	exec := &fakeExecutor{}
	v := &fakeValidator{out: &plan.ValidatedPlan{
		PlanID:             "p-1",
		IsValid:            false,
		ValidationWarnings: []string{"Step step_1: Tool 'self_destruct' not found, skipping step"},
	}}
	c := New(&fakePlanner{plan: goodPlan()}, v, exec, store, log.Discard())

	res := c.Run(context.Background(), "destroy")
	assert.False(t, res.Success)
	assert.Contains(t, res.Output, "Plan validation failed")
	assert.Contains(t, res.Output, "self_destruct")
	assert.NotNil(t, res.Validation)
	assert.Nil(t, res.Execution)
	assert.Zero(t, exec.calls, "execution skipped when plan invalid")

	recs, _ := store.Recent(context.Background(), 0)
	require.Len(t, recs, 1)
	assert.Equal(t, "validation_failed", recs[0].FinalStatus)
}

func TestRunPartialWithErrorsIsNotSuccess(t *testing.T) {
	exec := &fakeExecutor{report: &plan.ExecutionReport{
		PlanID:      "p-1",
		FinalStatus: plan.ExecPartial,
		Summary:     "Completed 1/2 steps successfully.",
		ExecutionResults: []plan.ExecutionResult{
			{StepID: "step_1", Success: true},
			{StepID: "step_2", Success: false, Error: "boom"},
		},
		Errors: []plan.StepError{{StepID: "step_2", Error: "boom"}},
	}}
	c := New(&fakePlanner{plan: goodPlan()}, &fakeValidator{}, exec, nil, log.Discard())

	res := c.Run(context.Background(), "two steps")
	assert.False(t, res.Success, "partial with errors fails the success predicate")
	assert.Contains(t, res.Output, "Completed 1/2 steps successfully.")
	assert.Contains(t, res.Output, "step_2: boom")
	require.NotNil(t, res.Execution)
	assert.Equal(t, plan.ExecPartial, res.Execution.FinalStatus)
}

func TestRunOutputCarriesRationaleAndFixCount(t *testing.T) {
	p := goodPlan()
	p.Rationale = "Take off first, then photograph the target area"
	v := &fakeValidator{out: &plan.ValidatedPlan{
		PlanID:  p.PlanID,
		IsValid: true,
		NormalizedSteps: []plan.PlanStep{{
			StepID:   "step_1",
			ToolName: "take_off",
			Args:     plan.Args{"drone_id": plan.StringValue("drone-7")},
			Status:   plan.StepValidated,
		}},
		Fixes: []plan.ValidationFix{{
			StepID:        "step_1",
			FixType:       plan.FixResolvedReference,
			OriginalValue: plan.StringValue("$drone"),
			FixedValue:    plan.StringValue("drone-7"),
			Reason:        "Resolved drone_id reference",
		}},
	}}
	c := New(&fakePlanner{plan: p}, v, &fakeExecutor{}, nil, log.Discard())

	res := c.Run(context.Background(), "take off and photograph")
	assert.True(t, res.Success)
	assert.Contains(t, res.Output, "Take off first, then photograph the target area")
	assert.Contains(t, res.Output, "Validation fixes applied: 1")
	assert.Contains(t, res.Output, "Successfully executed all 1 steps.")
}

func TestRunPanicRecovered(t *testing.T) {
	exec := &fakeExecutor{panics: true}
	c := New(&fakePlanner{plan: goodPlan()}, &fakeValidator{}, exec, nil, log.Discard())

	res := c.Run(context.Background(), "take off")
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Contains(t, res.Output, "executor blew up")

	// 协调器在 panic 后仍可用
	exec.panics = false
	res = c.Run(context.Background(), "take off")
	assert.True(t, res.Success)
}

func TestRunSerialized(t *testing.T) {
	var active, maxActive int
	var mu sync.Mutex
	exec := &fakeExecutor{}
	blocker := &blockingValidator{active: &active, maxActive: &maxActive, mu: &mu}
	c := New(&fakePlanner{plan: goodPlan()}, blocker, exec, nil, log.Discard())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Run(context.Background(), "cmd")
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive, "at most one run in flight")
}

type blockingValidator struct {
	active    *int
	maxActive *int
	mu        *sync.Mutex
}

func (b *blockingValidator) ValidateAndFix(ctx context.Context, p *plan.Plan) *plan.ValidatedPlan {
	b.mu.Lock()
	*b.active++
	if *b.active > *b.maxActive {
		*b.maxActive = *b.active
	}
	b.mu.Unlock()

	// 停留足够久，让并发的 Run 有机会重叠
	time.Sleep(20 * time.Millisecond)

	steps := make([]plan.PlanStep, len(p.Steps))
	for i, s := range p.Steps {
		steps[i] = s.Clone()
		steps[i].Status = plan.StepValidated
	}

	b.mu.Lock()
	*b.active--
	b.mu.Unlock()
	return &plan.ValidatedPlan{PlanID: p.PlanID, NormalizedSteps: steps, IsValid: true}
}
