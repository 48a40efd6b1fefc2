package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// IntentResult is the dialog service's read of one utterance.
type IntentResult struct {
	Intent          string            `json:"intent"`
	Parameters      map[string]string `json:"parameters"`
	FulfillmentText string            `json:"fulfillment_text"`
}

// IntentClient classifies free text into an intent plus extracted
// parameters. The classification itself is an external concern; the service
// only consumes this contract.
type IntentClient interface {
	DetectIntent(ctx context.Context, sessionID, text string) (*IntentResult, error)
}

// HTTPIntentClient talks to the dialog service's REST endpoint.
type HTTPIntentClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPIntentClient creates an intent client with a bounded timeout.
func NewHTTPIntentClient(baseURL string) *HTTPIntentClient {
	return &HTTPIntentClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type detectIntentRequest struct {
	SessionID    string `json:"session_id"`
	Text         string `json:"text"`
	LanguageCode string `json:"language_code"`
}

func (c *HTTPIntentClient) DetectIntent(ctx context.Context, sessionID, text string) (*IntentResult, error) {
	body, err := json.Marshal(detectIntentRequest{
		SessionID:    sessionID,
		Text:         text,
		LanguageCode: "en-US",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/detect-intent", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("intent service returned %d", resp.StatusCode)
	}

	var result IntentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding intent response: %w", err)
	}
	return &result, nil
}
