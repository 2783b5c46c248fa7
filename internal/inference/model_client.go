/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"prognos/common/client"
)

// ModelClient is the contract of one model-serving collaborator. Predict
// serves regressors, PredictProba serves classifiers and returns the class
// label list alongside the per-class probabilities.
type ModelClient interface {
	Predict(ctx context.Context, row []float64) (float64, error)
	PredictProba(ctx context.Context, row []float64) ([]string, []float64, error)
}

type predictionRequest struct {
	Data [][]float64 `json:"data"`
}

type predictionResponse struct {
	Predictions   []float64   `json:"predictions,omitempty"`
	Classes       []string    `json:"classes,omitempty"`
	Probabilities [][]float64 `json:"probabilities,omitempty"`
}

// HTTPModelClient calls a model-serving endpoint over HTTP. Responses are
// memoized per input row so repeated pipeline runs against the same
// observation don't re-invoke the model server.
type HTTPModelClient struct {
	url        string
	httpClient client.HTTPClient
	cache      *gocache.Cache
	lc         logger.LoggingClient
}

func NewHTTPModelClient(url string, timeout time.Duration, cacheTTL time.Duration, lc logger.LoggingClient) *HTTPModelClient {
	return &HTTPModelClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
		lc:         lc,
	}
}

// SetHTTPClient overrides the outbound client, for tests.
func (m *HTTPModelClient) SetHTTPClient(httpClient client.HTTPClient) {
	m.httpClient = httpClient
}

func (m *HTTPModelClient) Predict(ctx context.Context, row []float64) (float64, error) {
	cacheKey := "predict:" + rowCacheKey(row)
	if cached, found := m.cache.Get(cacheKey); found {
		return cached.(float64), nil
	}

	response, err := m.post(ctx, row)
	if err != nil {
		return 0, err
	}
	if len(response.Predictions) == 0 {
		return 0, errors.Errorf("model server %s returned no predictions", m.url)
	}

	prediction := response.Predictions[0]
	m.cache.Set(cacheKey, prediction, gocache.DefaultExpiration)
	return prediction, nil
}

func (m *HTTPModelClient) PredictProba(ctx context.Context, row []float64) ([]string, []float64, error) {
	cacheKey := "proba:" + rowCacheKey(row)
	if cached, found := m.cache.Get(cacheKey); found {
		entry := cached.(probaCacheEntry)
		return entry.classes, entry.probabilities, nil
	}

	response, err := m.post(ctx, row)
	if err != nil {
		return nil, nil, err
	}
	if len(response.Probabilities) == 0 || len(response.Probabilities[0]) == 0 {
		return nil, nil, errors.Errorf("model server %s returned no probabilities", m.url)
	}

	entry := probaCacheEntry{classes: response.Classes, probabilities: response.Probabilities[0]}
	m.cache.Set(cacheKey, entry, gocache.DefaultExpiration)
	return entry.classes, entry.probabilities, nil
}

type probaCacheEntry struct {
	classes       []string
	probabilities []float64
}

func (m *HTTPModelClient) post(ctx context.Context, row []float64) (*predictionResponse, error) {
	payload, err := json.Marshal(predictionRequest{Data: [][]float64{row}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal prediction request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build prediction request for %s", m.url)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "error calling model server %s", m.url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Errorf("model server %s returned status %d: %s", m.url, resp.StatusCode, string(body))
	}

	var response predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Wrapf(err, "error parsing response from model server %s", m.url)
	}
	return &response, nil
}

func rowCacheKey(row []float64) string {
	return fmt.Sprintf("%v", row)
}
