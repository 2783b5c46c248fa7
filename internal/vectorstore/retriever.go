/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package vectorstore

import (
	"context"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/hashicorp/go-uuid"
	"github.com/spf13/cast"

	"prognos/common/config"
	"prognos/common/dto"
	prognosErrors "prognos/common/errors"
	"prognos/common/telemetry"
)

// SimilarityRetriever wraps the vector store with the retrieval policy:
// top-k query, minimum-similarity cut, metadata flattening. Store failures
// degrade to an empty case list so the diagnosis stage can still run on
// classifier evidence alone.
type SimilarityRetriever struct {
	store         VectorStore
	topK          int
	minSimilarity float64
	metrics       *telemetry.MetricsService
	lc            logger.LoggingClient
}

func NewSimilarityRetriever(store VectorStore, storeConfig config.VectorStoreConfig, metrics *telemetry.MetricsService, lc logger.LoggingClient) *SimilarityRetriever {
	return &SimilarityRetriever{
		store:         store,
		topK:          storeConfig.TopK,
		minSimilarity: storeConfig.MinSimilarity,
		metrics:       metrics,
		lc:            lc,
	}
}

// QuerySimilarFailures returns historical cases at least minSimilarity close
// to the embedding, best first. Never returns an error: retrieval is advisory.
func (r *SimilarityRetriever) QuerySimilarFailures(ctx context.Context, embedding []float64, filter map[string]interface{}) []dto.FailureCase {
	r.metrics.IncrCounter(telemetry.StoreQueriesCount, 1)

	if r.store == nil {
		r.lc.Warn("Vector store not initialized, returning no similar cases")
		return []dto.FailureCase{}
	}

	matches, err := r.store.Query(ctx, embedding, r.topK, filter)
	if err != nil {
		r.lc.Warnf("Similar case lookup failed, continuing without historical evidence: %s", err.Message())
		return []dto.FailureCase{}
	}

	cases := make([]dto.FailureCase, 0, len(matches))
	for _, match := range matches {
		if match.Similarity < r.minSimilarity {
			continue
		}
		cases = append(cases, failureCaseFromMatch(match))
	}
	return cases
}

// AddFailureCase stores a new historical case. A fresh id is generated when
// none is supplied.
func (r *SimilarityRetriever) AddFailureCase(ctx context.Context, id string, embedding []float64, metadata map[string]interface{}) (string, prognosErrors.PrognosError) {
	if r.store == nil {
		return "", prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, "Vector store not initialized")
	}
	if id == "" {
		generated, err := uuid.GenerateUUID()
		if err != nil {
			return "", prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeServerError, "Failed to generate case id")
		}
		id = generated
	}
	if err := r.store.Add(ctx, id, embedding, metadata); err != nil {
		return "", err
	}
	r.metrics.IncrCounter(telemetry.CasesAddedCount, 1)
	r.lc.Infof("Stored failure case %s", id)
	return id, nil
}

// DeleteFailureCase removes a stored case.
func (r *SimilarityRetriever) DeleteFailureCase(ctx context.Context, id string) prognosErrors.PrognosError {
	if r.store == nil {
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, "Vector store not initialized")
	}
	return r.store.Delete(ctx, id)
}

// failureCaseFromMatch flattens the stored metadata into the typed case the
// diagnosis stage consumes. Metadata written by older seeders may hold numbers
// as strings; cast handles both.
func failureCaseFromMatch(match Match) dto.FailureCase {
	failureCase := dto.FailureCase{
		ID:         match.ID,
		Similarity: match.Similarity,
		Metadata:   match.Metadata,
	}
	if match.Metadata == nil {
		return failureCase
	}
	failureCase.Component = cast.ToString(match.Metadata["component"])
	failureCase.FailureType = cast.ToString(match.Metadata["failure_type"])
	failureCase.Severity = cast.ToString(match.Metadata["severity"])
	failureCase.RUL = cast.ToFloat64(match.Metadata["rul"])
	failureCase.FailureProbability = cast.ToFloat64(match.Metadata["failure_probability"])
	return failureCase
}
