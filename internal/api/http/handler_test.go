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

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uav-platform/internal/agent/pipeline"
	"uav-platform/internal/agent/plan"
	"uav-platform/internal/api/http/middleware"
	"uav-platform/internal/storage/history"
	"uav-platform/internal/uav"
	"uav-platform/pkg/log"
)

type stubPlanner struct{ fail bool }

func (s *stubPlanner) Plan(ctx context.Context, userInput string) (*plan.Plan, error) {
	p := plan.NewPlan(userInput)
	if s.fail {
		p.Status = plan.PlanFailed
		p.Rationale = "Failed to generate plan: no LLM"
		return p, nil
	}
	p.Steps = []plan.PlanStep{{
		StepID:   "step_1",
		ToolName: "list_drones",
		Args:     plan.Args{},
		Status:   plan.StepPending,
	}}
	return p, nil
}

type stubValidator struct{}

func (s *stubValidator) ValidateAndFix(ctx context.Context, p *plan.Plan) *plan.ValidatedPlan {
	steps := make([]plan.PlanStep, len(p.Steps))
	for i, st := range p.Steps {
		steps[i] = st.Clone()
		steps[i].Status = plan.StepValidated
	}
	return &plan.ValidatedPlan{PlanID: p.PlanID, NormalizedSteps: steps, IsValid: true}
}

type stubExecutor struct{}

func (s *stubExecutor) Execute(ctx context.Context, vp *plan.ValidatedPlan) *plan.ExecutionReport {
	return &plan.ExecutionReport{
		PlanID:      vp.PlanID,
		FinalStatus: plan.ExecCompleted,
		Summary:     "Successfully executed all 1 steps.",
		ExecutionResults: []plan.ExecutionResult{
			{StepID: "step_1", Success: true},
		},
	}
}

func newTestRouter(t *testing.T, plannerFails bool, fleetHandler http.HandlerFunc) (*Router, history.Store) {
	t.Helper()
	srv := httptest.NewServer(fleetHandler)
	t.Cleanup(srv.Close)
	fleet := uav.NewClient(uav.Config{BaseURL: srv.URL})

	store := history.NewMemoryStore(10)
	coord := pipeline.New(&stubPlanner{fail: plannerFails}, &stubValidator{}, &stubExecutor{}, store, log.Discard())
	handler := NewHandler(coord, fleet, store, log.Discard())
	router := NewRouter(handler, middleware.NewMiddleware())
	router.SetupRoutes()
	return router, store
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, false, func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestExecuteCommand(t *testing.T) {
	router, store := newTestRouter(t, false, func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/commands",
		strings.NewReader(`{"command": "list all drones"}`))
	req.Header.Set("Content-Type", "application/json")
	router.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Contains(t, result.Output, "Successfully executed")
	require.NotNil(t, result.Plan)
	assert.Equal(t, "list all drones", result.Plan.UserIntent)

	recs, _ := store.Recent(context.Background(), 0)
	assert.Len(t, recs, 1)
}

func TestExecuteCommandMissingBody(t *testing.T) {
	router, _ := newTestRouter(t, false, func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/commands", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExecuteCommandPlanningFailure(t *testing.T) {
	router, _ := newTestRouter(t, true, func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/commands",
		strings.NewReader(`{"command": "gibberish"}`))
	req.Header.Set("Content-Type", "application/json")
	router.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result pipeline.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Output, "Failed to generate a plan")
}

func TestListHistory(t *testing.T) {
	router, store := newTestRouter(t, false, func(w http.ResponseWriter, r *http.Request) {})
	store.Append(context.Background(), history.Record{ID: "r-1", Input: "cmd", FinalStatus: "completed"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil)
	router.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Records []history.Record `json:"records"`
		Total   int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, "r-1", body.Records[0].ID)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/history?limit=abc", nil)
	router.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionSummary(t *testing.T) {
	router, _ := newTestRouter(t, false, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions/current":
			json.NewEncoder(w).Encode(map[string]any{"name": "patrol-7", "task": "patrol", "status": "active"})
		case "/sessions/current/task-progress":
			json.NewEncoder(w).Encode(map[string]any{"progress_percentage": 40, "is_completed": false})
		case "/drones":
			json.NewEncoder(w).Encode([]map[string]any{{"id": "drone-1"}, {"id": "drone-2"}})
		default:
			http.NotFound(w, r)
		}
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	router.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 2, body["drones"])
	summary := body["summary"].(string)
	assert.Contains(t, summary, "Session: patrol-7")
	assert.Contains(t, summary, "Progress: 40%")
	assert.Contains(t, summary, "Drones: 2 available")
}

func TestSessionSummaryFleetDown(t *testing.T) {
	router, _ := newTestRouter(t, false, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestSystemMetrics(t *testing.T) {
	router, _ := newTestRouter(t, false, func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/system/metrics", nil)
	router.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
}
