/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package service

import (
	"encoding/json"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"
	"github.com/pkg/errors"
	gometrics "github.com/rcrowley/go-metrics"

	"prognos/common/config"
	"prognos/common/telemetry"
)

const (
	// max concurrent MQTT publish commands
	maxConcurrency = 5

	metricsReservoirSize = 1028

	connectTimeout = 10 * time.Second
)

// AssessmentPublisher pushes completed analysis results to the message bus so
// downstream dashboards and event pipelines can consume them.
type AssessmentPublisher interface {
	Publish(payload interface{}) error
	Close()
}

type MQTTAssessmentSender struct {
	lock            sync.Mutex
	client          MQTT.Client
	mqttConfig      config.MQTTConfig
	lc              logger.LoggingClient
	metrics         *telemetry.MetricsService
	mqttSizeMetrics gometrics.Histogram
	// used to enforce concurrency limit
	sem chan bool
}

// NewMQTTAssessmentSender builds the publisher but does not connect; the
// connection is established lazily on first publish.
func NewMQTTAssessmentSender(mqttConfig config.MQTTConfig, lc logger.LoggingClient, metrics *telemetry.MetricsService) *MQTTAssessmentSender {
	sender := &MQTTAssessmentSender{
		mqttConfig: mqttConfig,
		lc:         lc,
		metrics:    metrics,
		sem:        make(chan bool, maxConcurrency),
	}
	sender.mqttSizeMetrics = gometrics.NewHistogram(gometrics.NewUniformSample(metricsReservoirSize))
	return sender
}

func (sender *MQTTAssessmentSender) initializeMQTTClient() error {
	sender.lock.Lock()
	defer sender.lock.Unlock()

	if sender.client != nil && sender.client.IsConnected() {
		return nil
	}

	opts := MQTT.NewClientOptions()
	opts.AddBroker(sender.mqttConfig.BrokerAddress)
	opts.SetClientID(sender.mqttConfig.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(connectTimeout)

	client := MQTT.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return errors.Errorf("timed out connecting to mqtt broker %s", sender.mqttConfig.BrokerAddress)
	}
	if token.Error() != nil {
		return errors.Wrapf(token.Error(), "failed to connect to mqtt broker %s", sender.mqttConfig.BrokerAddress)
	}
	sender.client = client
	sender.lc.Infof("Connected to mqtt broker %s", sender.mqttConfig.BrokerAddress)
	return nil
}

func (sender *MQTTAssessmentSender) Publish(payload interface{}) error {
	sender.sem <- true
	defer func() { <-sender.sem }()

	if err := sender.initializeMQTTClient(); err != nil {
		sender.metrics.IncrCounter(telemetry.PublishErrorsCount, 1)
		return err
	}

	exportData, err := json.Marshal(payload)
	if err != nil {
		sender.metrics.IncrCounter(telemetry.PublishErrorsCount, 1)
		return errors.Wrap(err, "failed to marshal assessment payload")
	}

	token := sender.client.Publish(sender.mqttConfig.Topic, byte(sender.mqttConfig.QoS), false, exportData)
	token.Wait()
	if token.Error() != nil {
		sender.metrics.IncrCounter(telemetry.PublishErrorsCount, 1)
		return errors.Wrapf(token.Error(), "failed to publish assessment to topic %s", sender.mqttConfig.Topic)
	}

	sender.mqttSizeMetrics.Update(int64(len(exportData)))
	sender.lc.Debugf("Published assessment to topic %s, size: %d bytes", sender.mqttConfig.Topic, len(exportData))
	return nil
}

func (sender *MQTTAssessmentSender) GetMqttSizeMetrics() gometrics.Histogram {
	return sender.mqttSizeMetrics
}

func (sender *MQTTAssessmentSender) Close() {
	sender.lock.Lock()
	defer sender.lock.Unlock()
	if sender.client != nil && sender.client.IsConnected() {
		sender.client.Disconnect(250)
	}
}
