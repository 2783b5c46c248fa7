package vectorstore

import (
	"testing"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prognos/common/config"
	prognosErrors "prognos/common/errors"
)

func TestMatchesFilter(t *testing.T) {
	metadata := map[string]interface{}{"component": "HPC", "severity": "high", "rul": 42.0}

	tests := []struct {
		name     string
		filter   map[string]interface{}
		expected bool
	}{
		{"nil filter matches", nil, true},
		{"exact match", map[string]interface{}{"component": "HPC"}, true},
		{"numeric value compared by rendering", map[string]interface{}{"rul": 42.0}, true},
		{"mismatched value", map[string]interface{}{"component": "Fan"}, false},
		{"missing key", map[string]interface{}{"location": "wing"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, matchesFilter(metadata, tt.filter))
		})
	}
}

func TestNormalizeLuceneCosineScore(t *testing.T) {
	assert.InDelta(t, 1.0, normalizeLuceneCosineScore(1.0), 1e-9)
	assert.InDelta(t, 0.0, normalizeLuceneCosineScore(0.5), 1e-9)
	// anti-correlated vectors clamp to 0 rather than going negative
	assert.InDelta(t, 0.0, normalizeLuceneCosineScore(0.0), 1e-9)
	assert.InDelta(t, 0.6, normalizeLuceneCosineScore(0.8), 1e-9)
}

func TestNewVectorStore_BackendSelection(t *testing.T) {
	lc := logger.NewMockClient()

	store, err := NewVectorStore(config.VectorStoreConfig{Backend: "redis"}, lc)
	require.Nil(t, err)
	assert.IsType(t, &RedisVectorStore{}, store)

	store, err = NewVectorStore(config.VectorStoreConfig{}, lc)
	require.Nil(t, err)
	assert.IsType(t, &RedisVectorStore{}, store)

	_, err = NewVectorStore(config.VectorStoreConfig{Backend: "sqlite"}, lc)
	require.NotNil(t, err)
	assert.True(t, err.IsErrorType(prognosErrors.ErrorTypeConfig))
}
