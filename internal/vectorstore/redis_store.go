/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/gomodule/redigo/redis"

	"prognos/common/config"
	prognosErrors "prognos/common/errors"
	"prognos/common/utils"
)

const (
	caseKeyPrefix = "prognos:case:"
	caseIDSetKey  = "prognos:cases"

	embeddingField = "embedding"
	metadataField  = "metadata"
)

// RedisVectorStore keeps case embeddings in Redis hashes and ranks candidates
// by cosine similarity in-process. Suited to the edge deployment where case
// counts stay small; the opensearch backend serves larger installations.
type RedisVectorStore struct {
	Pool *redis.Pool
	lc   logger.LoggingClient
}

func NewRedisVectorStore(storeConfig config.VectorStoreConfig, lc logger.LoggingClient) *RedisVectorStore {
	address := fmt.Sprintf("%s:%s", storeConfig.RedisHost, storeConfig.RedisPort)
	dialOptions := []redis.DialOption{
		redis.DialConnectTimeout(time.Duration(storeConfig.QueryTimeoutSecs) * time.Second),
	}
	if storeConfig.RedisPassword != "" {
		dialOptions = append(dialOptions, redis.DialPassword(storeConfig.RedisPassword))
	}
	if storeConfig.RedisUsername != "" {
		dialOptions = append(dialOptions, redis.DialUsername(storeConfig.RedisUsername))
	}

	pool := &redis.Pool{
		MaxIdle:     5,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", address, dialOptions...)
		},
	}
	return &RedisVectorStore{Pool: pool, lc: lc}
}

func (s *RedisVectorStore) Add(ctx context.Context, id string, embedding []float64, metadata map[string]interface{}) prognosErrors.PrognosError {
	conn := s.Pool.Get()
	defer conn.Close()

	errorMessage := fmt.Sprintf("Error storing failure case %s", id)

	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}

	if _, err = conn.Do("HSET", caseKeyPrefix+id, embeddingField, embeddingJSON, metadataField, metadataJSON); err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}
	if _, err = conn.Do("SADD", caseIDSetKey, id); err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}
	return nil
}

func (s *RedisVectorStore) Query(ctx context.Context, embedding []float64, topK int, filter map[string]interface{}) ([]Match, prognosErrors.PrognosError) {
	conn := s.Pool.Get()
	defer conn.Close()

	errorMessage := "Error querying failure cases"

	ids, err := redis.Strings(conn.Do("SMEMBERS", caseIDSetKey))
	if err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return nil, prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}

	matches := make([]Match, 0, len(ids))
	for _, id := range ids {
		fields, err := redis.StringMap(conn.Do("HGETALL", caseKeyPrefix+id))
		if err != nil {
			s.lc.Warnf("Skipping unreadable case %s: %v", id, err)
			continue
		}
		var candidate []float64
		if err := json.Unmarshal([]byte(fields[embeddingField]), &candidate); err != nil {
			s.lc.Warnf("Skipping case %s with corrupt embedding: %v", id, err)
			continue
		}
		metadata := make(map[string]interface{})
		if raw, ok := fields[metadataField]; ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
				s.lc.Warnf("Skipping case %s with corrupt metadata: %v", id, err)
				continue
			}
		}
		if !matchesFilter(metadata, filter) {
			continue
		}
		matches = append(matches, Match{
			ID:         id,
			Similarity: utils.Clamp01(utils.CosineSimilarity(embedding, candidate)),
			Metadata:   metadata,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *RedisVectorStore) Delete(ctx context.Context, id string) prognosErrors.PrognosError {
	conn := s.Pool.Get()
	defer conn.Close()

	errorMessage := fmt.Sprintf("Error deleting failure case %s", id)

	if _, err := conn.Do("DEL", caseKeyPrefix+id); err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}
	if _, err := conn.Do("SREM", caseIDSetKey, id); err != nil {
		s.lc.Errorf("%s: %v", errorMessage, err)
		return prognosErrors.NewCommonPrognosError(prognosErrors.ErrorTypeDBError, errorMessage)
	}
	return nil
}
