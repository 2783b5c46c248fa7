/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"prognos/common/config"
	"prognos/common/dto"
	"prognos/common/telemetry"
	"prognos/internal/diagnosis"
	"prognos/internal/embedding"
	"prognos/internal/pipeline"
	"prognos/internal/risk"
	"prognos/internal/schedule"
	"prognos/internal/vectorstore"
	prognosmocks "prognos/mocks/prognos"
)

type routerFixture struct {
	echoServer *echo.Echo
	inference  *prognosmocks.MockInferenceRunner
	store      *prognosmocks.MockVectorStore
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	lc := logger.NewMockClient()
	metrics := telemetry.NewMetricsService()
	textGenerator := &prognosmocks.StubTextGenerator{Text: "generated"}
	thresholds := config.ThresholdsConfig{
		ConfidentTrust:         0.7,
		WeakEvidence:           0.5,
		AnomalyEmission:        0.4,
		HighFailureProbability: 0.5,
		CriticalRUL:            30,
		MediumRUL:              60,
	}

	inference := new(prognosmocks.MockInferenceRunner)
	store := new(prognosmocks.MockVectorStore)
	storeConfig := config.VectorStoreConfig{TopK: 5, MinSimilarity: 0.5, EmbeddingDim: 128}
	retriever := vectorstore.NewSimilarityRetriever(store, storeConfig, metrics, lc)
	embedder := embedding.NewFailureEmbedder(storeConfig.EmbeddingDim, lc)

	scheduler := schedule.NewScheduler(lc)
	scheduler.SetNowFn(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) })
	reporter := pipeline.NewReporter(textGenerator, lc)

	executor := pipeline.NewExecutor(
		inference,
		embedder,
		retriever,
		diagnosis.NewResolver(thresholds, textGenerator, lc),
		risk.NewScorer(thresholds, lc),
		scheduler,
		reporter,
		nil,
		metrics,
		lc,
	)

	echoServer := echo.New()
	NewRouter(echoServer, executor, inference, embedder, retriever, metrics, lc).AddRoutes()
	return &routerFixture{echoServer: echoServer, inference: inference, store: store}
}

func observationJSON() string {
	values := make([]string, dto.ObservationSize)
	for i := range values {
		values[i] = "0.1"
	}
	return "[" + strings.Join(values, ",") + "]"
}

func performRequest(fixture *routerFixture, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	fixture.echoServer.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := performRequest(fixture, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var response HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "predictive-maintenance-system", response.Service)
}

func TestAnalyzeEndpoint_Success(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).Return(&dto.PredictionSet{
		FD001:    &dto.ModelPrediction{RUL: 80, FailureProbability: 0.1},
		FD002:    &dto.ModelPrediction{RUL: 85, FailureProbability: 0.1},
		FD003:    &dto.ModelPrediction{RUL: 82, FailureProbability: 0.1, PredictedComponent: "0", ComponentProbs: map[string]float64{"0": 0.9, "1": 0.05, "2": 0.05}},
		Ensemble: &dto.EnsembleSummary{AvgRUL: 82.33, MaxFailureProbability: 0.1},
	}, nil)
	fixture.store.On("Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]vectorstore.Match{}, nil)

	rec := performRequest(fixture, http.MethodPost, "/api/analyze",
		`{"observation": `+observationJSON()+`}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var state pipeline.PipelineState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, dto.RiskLow, state.RiskAssessment.RiskLevel)
	assert.NotEmpty(t, state.CorrelationID)
	assert.NotNil(t, state.FinalReport)
}

func TestAnalyzeEndpoint_StringObservation(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).Return(&dto.PredictionSet{
		Ensemble: &dto.EnsembleSummary{AvgRUL: 90, MaxFailureProbability: 0.05},
	}, nil)
	fixture.store.On("Query", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]vectorstore.Match{}, nil)

	values := strings.TrimSuffix(strings.Repeat("0.5, ", dto.ObservationSize), ", ")
	rec := performRequest(fixture, http.MethodPost, "/api/analyze",
		`{"observation": "[`+values+`]"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalyzeEndpoint_BadInput(t *testing.T) {
	fixture := newRouterFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing observation", `{}`},
		{"wrong length", `{"observation": [1, 2, 3]}`},
		{"non numeric string", `{"observation": "[a, b, c]"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := performRequest(fixture, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAddCaseEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.inference.On("UnifiedInference", mock.Anything, mock.Anything).Return(&dto.PredictionSet{
		Ensemble: &dto.EnsembleSummary{AvgRUL: 15, MaxFailureProbability: 0.9},
	}, nil)
	fixture.store.On("Add", mock.Anything, mock.AnythingOfType("string"), mock.Anything, mock.MatchedBy(func(metadata map[string]interface{}) bool {
		return metadata["component"] == "HPC" && metadata["severity"] == "high"
	})).Return(nil)

	body := `{"observation": ` + observationJSON() + `, "component": "HPC", "failure_type": "degradation", "severity": "high", "rul": 12, "failure_probability": 0.9}`
	rec := performRequest(fixture, http.MethodPost, "/api/cases", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var response AddCaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotEmpty(t, response.ID)
	fixture.store.AssertExpectations(t)
}

func TestAddCaseEndpoint_RejectsBadSeverity(t *testing.T) {
	fixture := newRouterFixture(t)

	body := `{"observation": ` + observationJSON() + `, "component": "HPC", "failure_type": "degradation", "severity": "catastrophic", "rul": 12, "failure_probability": 0.9}`
	rec := performRequest(fixture, http.MethodPost, "/api/cases", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCaseEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	fixture.store.On("Delete", mock.Anything, "case-42").Return(nil)

	rec := performRequest(fixture, http.MethodDelete, "/api/cases/case-42", "")

	require.Equal(t, http.StatusOK, rec.Code)
	fixture.store.AssertExpectations(t)
}

func TestStatsEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)

	rec := performRequest(fixture, http.MethodGet, "/api/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Contains(t, snapshot, telemetry.AnalysesCount)
}
