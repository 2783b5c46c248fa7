/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edgexfoundry/go-mod-core-contracts/v3/clients/logger"

	"prognos/common/client"
	"prognos/common/config"
)

// MissingAPIKeyMessage is returned verbatim whenever no credential is
// configured. Callers treat generated text as advisory, so this sentinel flows
// into reason/narrative fields rather than failing a stage.
const MissingAPIKeyMessage = "LLM Service unavailable (Missing API Key)."

// TextGenerator produces human-readable explanation text. Implementations
// never return an error: generation failures degrade to an error string so
// decision fields are unaffected.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) string
}

// GeminiService calls the Gemini generateContent REST endpoint.
type GeminiService struct {
	llmConfig  config.LLMConfig
	httpClient client.HTTPClient
	lc         logger.LoggingClient
}

func NewGeminiService(llmConfig config.LLMConfig, lc logger.LoggingClient) *GeminiService {
	return &GeminiService{
		llmConfig:  llmConfig,
		httpClient: &http.Client{Timeout: time.Duration(llmConfig.TimeoutSecs) * time.Second},
		lc:         lc,
	}
}

// SetHTTPClient overrides the outbound client, for tests.
func (g *GeminiService) SetHTTPClient(httpClient client.HTTPClient) {
	g.httpClient = httpClient
}

// SetBaseURL overrides the endpoint base, for tests.
func (g *GeminiService) SetBaseURL(baseURL string) {
	g.llmConfig.BaseURL = baseURL
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiService) GenerateContent(ctx context.Context, prompt string) string {
	if g.llmConfig.APIKey == "" {
		return MissingAPIKeyMessage
	}

	text, err := g.generate(ctx, prompt)
	if err != nil {
		g.lc.Warnf("Text generation failed: %v", err)
		return fmt.Sprintf("Error generating content: %v", err)
	}
	return text
}

func (g *GeminiService) generate(ctx context.Context, prompt string) (string, error) {
	request := generateContentRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{MaxOutputTokens: g.llmConfig.MaxTokens},
	}
	payload, err := json.Marshal(request)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		g.llmConfig.BaseURL, g.llmConfig.Model, g.llmConfig.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("generateContent returned status %d: %s", resp.StatusCode, string(body))
	}

	var response generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", err
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generateContent returned no candidates")
	}
	return response.Candidates[0].Content.Parts[0].Text, nil
}
