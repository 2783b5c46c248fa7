/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package config

import (
	"os"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// ModelEndpoints holds the model-serving URLs for one model family.
// ComponentURL is set for FD003 only.
type ModelEndpoints struct {
	RegressorURL string `toml:"RegressorURL"`
	FailureURL   string `toml:"FailureURL"`
	ComponentURL string `toml:"ComponentURL"`
}

type ModelsConfig struct {
	FD001               ModelEndpoints `toml:"FD001"`
	FD002               ModelEndpoints `toml:"FD002"`
	FD003               ModelEndpoints `toml:"FD003"`
	NormalizerStatsFile string         `toml:"NormalizerStatsFile"`
	NormalizationMethod string         `toml:"NormalizationMethod"`
	RequestTimeoutSecs  int            `toml:"RequestTimeoutSecs"`
	CacheTTLSecs        int            `toml:"CacheTTLSecs"`
}

type VectorStoreConfig struct {
	Backend              string  `toml:"Backend"`
	EmbeddingDim         int     `toml:"EmbeddingDim"`
	TopK                 int     `toml:"TopK"`
	MinSimilarity        float64 `toml:"MinSimilarity"`
	RedisHost            string  `toml:"RedisHost"`
	RedisPort            string  `toml:"RedisPort"`
	RedisUsername        string  `toml:"RedisUsername"`
	RedisPassword        string  `toml:"RedisPassword"`
	OpenSearchURL        string  `toml:"OpenSearchURL"`
	IndexName            string  `toml:"IndexName"`
	SkipCertVerification bool    `toml:"SkipCertVerification"`
	QueryTimeoutSecs     int     `toml:"QueryTimeoutSecs"`
}

// ThresholdsConfig names every decision boundary of the pipeline. The values
// come from the trained model evaluation; override them in configuration, not
// in code.
type ThresholdsConfig struct {
	ConfidentTrust         float64 `toml:"ConfidentTrust"`
	WeakEvidence           float64 `toml:"WeakEvidence"`
	AnomalyEmission        float64 `toml:"AnomalyEmission"`
	HighFailureProbability float64 `toml:"HighFailureProbability"`
	CriticalRUL            float64 `toml:"CriticalRUL"`
	MediumRUL              float64 `toml:"MediumRUL"`
}

type LLMConfig struct {
	APIKey      string `toml:"APIKey"`
	BaseURL     string `toml:"BaseURL"`
	Model       string `toml:"Model"`
	MaxTokens   int    `toml:"MaxTokens"`
	TimeoutSecs int    `toml:"TimeoutSecs"`
}

// MQTTConfig configures the optional prediction publisher. Publishing is
// disabled when BrokerAddress is empty.
type MQTTConfig struct {
	BrokerAddress string `toml:"BrokerAddress"`
	Topic         string `toml:"Topic"`
	ClientID      string `toml:"ClientID"`
	QoS           int    `toml:"QoS"`
}

type ServiceSettings struct {
	Host     string `toml:"Host"`
	Port     int    `toml:"Port"`
	LogLevel string `toml:"LogLevel"`
}

type BatchConfig struct {
	Workers int `toml:"Workers"`
}

type ServiceConfig struct {
	Service     ServiceSettings   `toml:"Service"`
	Models      ModelsConfig      `toml:"Models"`
	VectorStore VectorStoreConfig `toml:"VectorStore"`
	Thresholds  ThresholdsConfig  `toml:"Thresholds"`
	LLM         LLMConfig         `toml:"LLM"`
	MQTT        MQTTConfig        `toml:"MQTT"`
	Batch       BatchConfig       `toml:"Batch"`
}

// NewServiceConfig returns a configuration populated with the documented
// defaults for every decision threshold and collaborator setting.
func NewServiceConfig() *ServiceConfig {
	cfg := new(ServiceConfig)
	cfg.Service = ServiceSettings{Host: "0.0.0.0", Port: 5000, LogLevel: "INFO"}
	cfg.Models = ModelsConfig{NormalizationMethod: "zscore", RequestTimeoutSecs: 10, CacheTTLSecs: 60}
	cfg.VectorStore = VectorStoreConfig{
		Backend:          "redis",
		EmbeddingDim:     128,
		TopK:             5,
		MinSimilarity:    0.5,
		RedisHost:        "localhost",
		RedisPort:        "6379",
		IndexName:        "failure_patterns",
		QueryTimeoutSecs: 5,
	}
	cfg.Thresholds = ThresholdsConfig{
		ConfidentTrust:         0.7,
		WeakEvidence:           0.5,
		AnomalyEmission:        0.4,
		HighFailureProbability: 0.5,
		CriticalRUL:            30,
		MediumRUL:              60,
	}
	cfg.LLM = LLMConfig{
		BaseURL:     "https://generativelanguage.googleapis.com",
		Model:       "gemini-2.0-flash",
		MaxTokens:   4096,
		TimeoutSecs: 30,
	}
	cfg.MQTT = MQTTConfig{Topic: "prognos/predictions", ClientID: "prognos-analyzer", QoS: 0}
	cfg.Batch = BatchConfig{Workers: 4}
	return cfg
}

// LoadConfigurations overlays the TOML file at configFile onto the defaults
// and applies environment overrides for secrets.
func (cfg *ServiceConfig) LoadConfigurations(configFile string, lc logger.LoggingClient) error {
	if configFile != "" {
		tree, err := toml.LoadFile(configFile)
		if err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", configFile)
		}
		if err := tree.Unmarshal(cfg); err != nil {
			return errors.Wrapf(err, "failed to parse configuration file %s", configFile)
		}
		lc.Infof("Loaded configuration from %s", configFile)
	}

	if apiKey := os.Getenv("GOOGLE_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if cfg.LLM.APIKey == "" {
		lc.Warn("GOOGLE_API_KEY not found in environment or configuration. LLM features will be disabled.")
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.VectorStore.RedisPassword = redisPassword
	}

	lc.Infof("Vector store backend: %s, embedding dim: %d", cfg.VectorStore.Backend, cfg.VectorStore.EmbeddingDim)
	return nil
}
