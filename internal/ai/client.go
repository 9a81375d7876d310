package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GeminiClient calls the Gemini generateContent endpoint. One-shot
// generation, no threads or polling.
type GeminiClient struct {
	APIKey string
	Model  string

	httpClient *http.Client
}

func New(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		APIKey: apiKey,
		Model:  model,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// Summarize sends the prompt and returns the model's text response.
func (c *GeminiClient) Summarize(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"maxOutputTokens": 256,
			"temperature":     0.4,
		},
	}

	payload, _ := json.Marshal(reqBody)

	url := fmt.Sprintf(
		"https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s",
		c.Model, c.APIKey,
	)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: status %d: %s", res.StatusCode, string(body))
	}

	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}

	for _, cand := range parsed.Candidates {
		if len(cand.Content.Parts) > 0 && cand.Content.Parts[0].Text != "" {
			return cand.Content.Parts[0].Text, nil
		}
	}

	return "", fmt.Errorf("gemini: empty response")
}
