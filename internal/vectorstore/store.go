/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package vectorstore

import (
	"context"
	"fmt"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"prognos/common/config"
	prognosErrors "prognos/common/errors"
)

// Match is one stored case returned by a similarity query. Similarity is
// always normalized to [0, 1] at the store boundary, whatever the backend's
// native scoring is.
type Match struct {
	ID         string                 `json:"id"`
	Similarity float64                `json:"similarity"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// VectorStore persists case embeddings and retrieves nearest neighbors.
type VectorStore interface {
	Add(ctx context.Context, id string, embedding []float64, metadata map[string]interface{}) prognosErrors.PrognosError
	Query(ctx context.Context, embedding []float64, topK int, filter map[string]interface{}) ([]Match, prognosErrors.PrognosError)
	Delete(ctx context.Context, id string) prognosErrors.PrognosError
}

// NewVectorStore builds the configured backend.
func NewVectorStore(storeConfig config.VectorStoreConfig, lc logger.LoggingClient) (VectorStore, prognosErrors.PrognosError) {
	switch storeConfig.Backend {
	case "redis", "":
		return NewRedisVectorStore(storeConfig, lc), nil
	case "opensearch":
		return NewOpenSearchVectorStore(storeConfig, lc)
	default:
		return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeConfig,
			fmt.Sprintf("Unsupported vector store backend: %s", storeConfig.Backend))
	}
}

// matchesFilter applies exact-match metadata filtering. Values are compared by
// their string rendering so numeric metadata round-tripped through JSON still
// matches.
func matchesFilter(metadata map[string]interface{}, filter map[string]interface{}) bool {
	for key, expected := range filter {
		actual, ok := metadata[key]
		if !ok {
			return false
		}
		if fmt.Sprintf("%v", actual) != fmt.Sprintf("%v", expected) {
			return false
		}
	}
	return true
}
