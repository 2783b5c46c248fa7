/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package main

import (
	"context"
	"flag"
	"os"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"prognos/common/config"
	"prognos/common/telemetry"
	"prognos/internal/batch"
	"prognos/internal/diagnosis"
	"prognos/internal/embedding"
	"prognos/internal/inference"
	"prognos/internal/llm"
	"prognos/internal/pipeline"
	"prognos/internal/risk"
	"prognos/internal/schedule"
	"prognos/internal/vectorstore"
)

const serviceKey = "prognos-batch"

func main() {
	inputFile := flag.String("input", "", "observations file (.npy or .csv)")
	outputFile := flag.String("output", "", "summary output file, stdout when empty")
	configFile := flag.String("config", "res/configuration.toml", "path to the service configuration file")
	workers := flag.Int("workers", 0, "concurrent analyses, overrides the configured value when > 0")
	flag.Parse()

	bootLc := logger.NewClient(serviceKey, "INFO")
	if *inputFile == "" {
		bootLc.Error("No input file given, use -input <file.npy|file.csv>")
		os.Exit(1)
	}

	cfg := config.NewServiceConfig()
	if err := cfg.LoadConfigurations(*configFile, bootLc); err != nil {
		bootLc.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	lc := logger.NewClient(serviceKey, cfg.Service.LogLevel)

	observations, err := batch.ReadObservations(*inputFile)
	if err != nil {
		lc.Errorf("Failed to read observations: %v", err)
		os.Exit(1)
	}
	lc.Infof("Loaded %d observations from %s", len(observations), *inputFile)

	metrics := telemetry.NewMetricsService()
	adapter := inference.NewAdapterFromConfig(cfg.Models, lc)
	embedder := embedding.NewFailureEmbedder(cfg.VectorStore.EmbeddingDim, lc)

	store, storeErr := vectorstore.NewVectorStore(cfg.VectorStore, lc)
	if storeErr != nil {
		lc.Errorf("Failed to initialize vector store: %s", storeErr.Message())
		os.Exit(1)
	}
	retriever := vectorstore.NewSimilarityRetriever(store, cfg.VectorStore, metrics, lc)
	textGenerator := llm.NewGeminiService(cfg.LLM, lc)

	executor := pipeline.NewExecutor(
		adapter,
		embedder,
		retriever,
		diagnosis.NewResolver(cfg.Thresholds, textGenerator, lc),
		risk.NewScorer(cfg.Thresholds, lc),
		schedule.NewScheduler(lc),
		pipeline.NewReporter(textGenerator, lc),
		nil,
		metrics,
		lc,
	)

	workerCount := cfg.Batch.Workers
	if *workers > 0 {
		workerCount = *workers
	}
	processor := batch.NewProcessor(executor, workerCount, lc)

	summaries, batchErr := processor.Process(context.Background(), observations)
	if batchErr != nil {
		lc.Warnf("Batch finished with errors: %v", batchErr)
	}
	if err := batch.WriteSummaries(summaries, *outputFile); err != nil {
		lc.Errorf("Failed to write summaries: %v", err)
		os.Exit(1)
	}
	if batchErr != nil {
		os.Exit(1)
	}
}
