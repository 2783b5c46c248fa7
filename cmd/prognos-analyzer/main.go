/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"prognos/common/client"
	"prognos/common/config"
	"prognos/common/service"
	"prognos/common/telemetry"
	"prognos/internal/diagnosis"
	"prognos/internal/embedding"
	"prognos/internal/inference"
	"prognos/internal/llm"
	"prognos/internal/pipeline"
	"prognos/internal/risk"
	"prognos/internal/router"
	"prognos/internal/schedule"
	"prognos/internal/vectorstore"
)

func main() {
	configFile := flag.String("config", "res/configuration.toml", "path to the service configuration file")
	flag.Parse()

	cfg := config.NewServiceConfig()
	bootLc := logger.NewClient(client.PrognosAnalyzerServiceKey, "INFO")
	if err := cfg.LoadConfigurations(*configFile, bootLc); err != nil {
		bootLc.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	lc := logger.NewClient(client.PrognosAnalyzerServiceKey, cfg.Service.LogLevel)

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

	var publisher service.AssessmentPublisher
	if cfg.MQTT.BrokerAddress != "" {
		sender := service.NewMQTTAssessmentSender(cfg.MQTT, lc, metrics)
		defer sender.Close()
		publisher = sender
	}

	executor := pipeline.NewExecutor(
		adapter,
		embedder,
		retriever,
		diagnosis.NewResolver(cfg.Thresholds, textGenerator, lc),
		risk.NewScorer(cfg.Thresholds, lc),
		schedule.NewScheduler(lc),
		pipeline.NewReporter(textGenerator, lc),
		publisher,
		metrics,
		lc,
	)

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.Use(echomiddleware.Recover())
	router.NewRouter(echoServer, executor, adapter, embedder, retriever, metrics, lc).AddRoutes()

	address := fmt.Sprintf("%s:%d", cfg.Service.Host, cfg.Service.Port)
	lc.Infof("Starting %s on %s", client.PrognosAnalyzerServiceKey, address)
	if err := echoServer.Start(address); err != nil {
		lc.Errorf("Server stopped: %v", err)
		os.Exit(1)
	}
}
