/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package router

import (
	"net/http"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"prognos/common/client"
	"prognos/common/dto"
	prognosErrors "prognos/common/errors"
	"prognos/common/telemetry"
	"prognos/internal/embedding"
	"prognos/internal/pipeline"
	"prognos/internal/vectorstore"
)

type Router struct {
	echoServer *echo.Echo
	executor   *pipeline.Executor
	inference  pipeline.InferenceRunner
	embedder   *embedding.FailureEmbedder
	retriever  *vectorstore.SimilarityRetriever
	metrics    *telemetry.MetricsService
	validate   *validator.Validate
	lc         logger.LoggingClient
}

type AnalyzeRequest struct {
	Observation interface{} `json:"observation" validate:"required"`
}

type AddCaseRequest struct {
	Observation        interface{} `json:"observation" validate:"required"`
	Component          string      `json:"component" validate:"required"`
	FailureType        string      `json:"failure_type" validate:"required"`
	Severity           string      `json:"severity" validate:"required,oneof=critical high medium low"`
	RUL                float64     `json:"rul" validate:"gte=0"`
	FailureProbability float64     `json:"failure_probability" validate:"gte=0,lte=1"`
}

type AddCaseResponse struct {
	ID string `json:"id"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

func NewRouter(
	echoServer *echo.Echo,
	executor *pipeline.Executor,
	inference pipeline.InferenceRunner,
	embedder *embedding.FailureEmbedder,
	retriever *vectorstore.SimilarityRetriever,
	metrics *telemetry.MetricsService,
	lc logger.LoggingClient,
) *Router {
	return &Router{
		echoServer: echoServer,
		executor:   executor,
		inference:  inference,
		embedder:   embedder,
		retriever:  retriever,
		metrics:    metrics,
		validate:   validator.New(),
		lc:         lc,
	}
}

func (r *Router) AddRoutes() {
	r.echoServer.GET("/api/health", r.Health)
	r.echoServer.POST("/api/analyze", r.Analyze)
	r.echoServer.POST("/api/cases", r.AddCase)
	r.echoServer.DELETE("/api/cases/:id", r.DeleteCase)
	r.echoServer.GET("/api/stats", r.Stats)
}

func (r *Router) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Service: client.ServiceName})
}

// Analyze runs the full diagnostic pipeline for one observation. Pipeline
// stage failures are reported inside the response body; only malformed input
// is rejected outright.
func (r *Router) Analyze(c echo.Context) error {
	var request AnalyzeRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := r.validate.Struct(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	observation, parseErr := r.parseAndValidate(request.Observation)
	if parseErr != nil {
		return parseErr.ConvertToHTTPError()
	}

	state := r.executor.Analyze(c.Request().Context(), observation)
	return c.JSON(http.StatusOK, state)
}

// AddCase stores a labeled historical failure. The observation runs through
// inference first so the stored embedding is comparable with analyze-time
// embeddings.
func (r *Router) AddCase(c echo.Context) error {
	var request AddCaseRequest
	if err := c.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := r.validate.Struct(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	observation, parseErr := r.parseAndValidate(request.Observation)
	if parseErr != nil {
		return parseErr.ConvertToHTTPError()
	}

	predictions, err := r.inference.UnifiedInference(c.Request().Context(), observation)
	if err != nil {
		r.lc.Warnf("Inference unavailable while adding case, embedding observation only: %v", err)
	}
	vector := r.embedder.Embed(observation, predictions)

	metadata := map[string]interface{}{
		"component":           request.Component,
		"failure_type":        request.FailureType,
		"severity":            request.Severity,
		"rul":                 request.RUL,
		"failure_probability": request.FailureProbability,
	}
	id, addErr := r.retriever.AddFailureCase(c.Request().Context(), "", vector, metadata)
	if addErr != nil {
		return addErr.ConvertToHTTPError()
	}
	return c.JSON(http.StatusCreated, AddCaseResponse{ID: id})
}

func (r *Router) DeleteCase(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Case id is required")
	}
	if err := r.retriever.DeleteFailureCase(c.Request().Context(), id); err != nil {
		return err.ConvertToHTTPError()
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (r *Router) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, r.metrics.Snapshot())
}

func (r *Router) parseAndValidate(raw interface{}) (dto.Observation, prognosErrors.PrognosError) {
	observation, err := dto.ParseObservation(raw)
	if err != nil {
		return nil, err
	}
	if err := observation.Validate(); err != nil {
		return nil, err
	}
	return observation, nil
}
