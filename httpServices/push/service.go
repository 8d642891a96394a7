package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// PushClient posts notifications to the push provider. Delivery is
// best-effort; callers never retry on error.
type PushClient struct {
	httpClient *http.Client
	baseURL    string
	serverKey  string
}

type pushRequest struct {
	DeviceToken string                 `json:"device_token"`
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

type pushResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewClient(baseURL string) *PushClient {
	return &PushClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:   baseURL,
		serverKey: os.Getenv("PUSH_SERVER_KEY"),
	}
}

// Send delivers one notification to a device token.
func (c *PushClient) Send(ctx context.Context, deviceToken, title, body string, data map[string]interface{}) error {
	payload, err := json.Marshal(pushRequest{
		DeviceToken: deviceToken,
		Title:       title,
		Body:        body,
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/send", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "key="+c.serverKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push provider returned non-OK status: %s", resp.Status)
	}

	var apiResp pushResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !apiResp.Success {
		return fmt.Errorf("push delivery rejected: %s", apiResp.Message)
	}

	return nil
}
