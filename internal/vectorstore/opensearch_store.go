/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package vectorstore

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/opensearch-project/opensearch-go/v4/opensearchutil"

	"prognos/common/config"
	prognosErrors "prognos/common/errors"
	"prognos/common/utils"
)

// OpenSearchVectorStore backs the case library with an OpenSearch k-NN index.
// Refer https://github.com/opensearch-project/opensearch-go/blob/main/USER_GUIDE.md
// for example implementation code.
type OpenSearchVectorStore struct {
	Client    *opensearchapi.Client
	indexName string
	dim       int
	timeout   time.Duration
	lc        logger.LoggingClient
}

type caseDocument struct {
	Embedding []float64              `json:"embedding"`
	Metadata  map[string]interface{} `json:"metadata"`
}

func NewOpenSearchVectorStore(storeConfig config.VectorStoreConfig, lc logger.LoggingClient) (*OpenSearchVectorStore, prognosErrors.PrognosError) {
	tp := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: storeConfig.SkipCertVerification},
	}
	client, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses: []string{storeConfig.OpenSearchURL},
			Transport: tp,
		},
	})
	if err != nil {
		lc.Errorf("Unable to create opensearch client for %s: %v", storeConfig.OpenSearchURL, err)
		return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeConfig,
			fmt.Sprintf("Failed to create opensearch client for %s", storeConfig.OpenSearchURL))
	}

	store := &OpenSearchVectorStore{
		Client:    client,
		indexName: storeConfig.IndexName,
		dim:       storeConfig.EmbeddingDim,
		timeout:   time.Duration(storeConfig.QueryTimeoutSecs) * time.Second,
		lc:        lc,
	}
	if err := store.ensureIndex(); err != nil {
		// the index may already exist or the cluster may be briefly down;
		// queries report their own errors either way
		lc.Warnf("Could not ensure index %s exists: %v", storeConfig.IndexName, err)
	}
	return store, nil
}

func (s *OpenSearchVectorStore) ensureIndex() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"index": map[string]interface{}{"knn": true},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"embedding": map[string]interface{}{
					"type":      "knn_vector",
					"dimension": s.dim,
					"method": map[string]interface{}{
						"name":       "hnsw",
						"space_type": "cosinesimil",
						"engine":     "lucene",
					},
				},
				"metadata": map[string]interface{}{"type": "object"},
			},
		},
	}

	res, err := s.Client.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: s.indexName,
		Body:  opensearchutil.NewJSONReader(&mapping),
	})
	if err != nil {
		return err
	}
	s.lc.Infof("Created opensearch index %s, acknowledged: %t", s.indexName, res.Acknowledged)
	return nil
}

func (s *OpenSearchVectorStore) Add(ctx context.Context, id string, embedding []float64, metadata map[string]interface{}) prognosErrors.PrognosError {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	errorMessage := fmt.Sprintf("Error storing failure case %s", id)

	document := caseDocument{Embedding: embedding, Metadata: metadata}
	res, err := s.Client.Index(ctx, opensearchapi.IndexReq{
		Index:      s.indexName,
		DocumentID: id,
		Body:       opensearchutil.NewJSONReader(&document),
		Params: opensearchapi.IndexParams{
			Refresh: "true",
		},
	})
	if err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}
	s.lc.Debugf("Indexed case %s, result: %s", id, res.Result)
	return nil
}

func (s *OpenSearchVectorStore) Query(ctx context.Context, embedding []float64, topK int, filter map[string]interface{}) ([]Match, prognosErrors.PrognosError) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	errorMessage := "Error querying failure cases"

	knnQuery := map[string]interface{}{
		"knn": map[string]interface{}{
			"embedding": map[string]interface{}{
				"vector": embedding,
				"k":      topK,
			},
		},
	}
	query := map[string]interface{}{
		"size":  topK,
		"query": knnQuery,
	}
	if len(filter) > 0 {
		must := make([]map[string]interface{}, 0, len(filter))
		for key, value := range filter {
			must = append(must, map[string]interface{}{
				"term": map[string]interface{}{"metadata." + key + ".keyword": value},
			})
		}
		query["query"] = map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   []map[string]interface{}{knnQuery},
				"filter": must,
			},
		}
	}

	res, err := s.Client.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{s.indexName},
		Body:    opensearchutil.NewJSONReader(&query),
	})
	if err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}

	matches := make([]Match, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var document caseDocument
		if err := json.Unmarshal(hit.Source, &document); err != nil {
			s.lc.Warnf("Skipping case %s with corrupt source: %v", hit.ID, err)
			continue
		}
		matches = append(matches, Match{
			ID:         hit.ID,
			Similarity: normalizeLuceneCosineScore(float64(hit.Score)),
			Metadata:   document.Metadata,
		})
	}
	return matches, nil
}

func (s *OpenSearchVectorStore) Delete(ctx context.Context, id string) prognosErrors.PrognosError {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	errorMessage := fmt.Sprintf("Error deleting failure case %s", id)

	if _, err := s.Client.Document.Delete(ctx, opensearchapi.DocumentDeleteReq{
		Index:      s.indexName,
		DocumentID: id,
	}); err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}
	return nil
}

// normalizeLuceneCosineScore converts the Lucene cosine similarity score,
// (1 + cos) / 2, back to the raw cosine and clamps it to [0, 1] so both
// backends report comparable similarities.
func normalizeLuceneCosineScore(score float64) float64 {
	return utils.Clamp01(2*score - 1)
}
