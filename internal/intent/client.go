package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Intent labels produced by the classifier.
const (
	CheckBalance     = "check_balance"
	SendMoney        = "send_money"
	RequestMoney     = "request_money"
	ShowTransactions = "show_transactions"
	Chat             = "chat"
)

// Result is the classifier's verdict for one utterance: a label, a
// confidence in [0,1] and the raw keyword entities it spotted.
type Result struct {
	Label      string
	Confidence float64
	Keywords   []string
}

// Client calls the external intent classification service. Classification
// itself is out of scope here; this is only the typed boundary.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Predict sends the utterance to the classifier's /predict endpoint.
func (c *Client) Predict(ctx context.Context, text string) (*Result, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	// The classifier answers with a two-element array: the prediction
	// object followed by a keywords object.
	var parts []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&parts); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty classifier response")
	}

	var prediction struct {
		PredictedIntent string  `json:"predicted_intent"`
		Confidence      float64 `json:"confidence"`
	}
	if err := json.Unmarshal(parts[0], &prediction); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}

	result := &Result{
		Label:      prediction.PredictedIntent,
		Confidence: prediction.Confidence,
	}
	if len(parts) > 1 {
		var kw struct {
			Keywords []string `json:"keywords"`
		}
		if err := json.Unmarshal(parts[1], &kw); err == nil {
			result.Keywords = kw.Keywords
		}
	}
	return result, nil
}
