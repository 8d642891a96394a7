package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"parcel-delivery/apperrors"
	"parcel-delivery/utils"
)

// Client talks to the hosted payment gateway over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	merchantID string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    baseURL,
		merchantID: os.Getenv("PAYMENT_MERCHANT_ID"),
	}
}

// CreatePaymentPage requests a hosted payment page for the given merchant
// reference. The redirect URLs embed the reference so both redirect targets
// can re-verify the transaction on return.
func (c *Client) CreatePaymentPage(ctx context.Context, req CreatePageRequest) (*CreatePageResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/pg/v1/pay", body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: create payment page: %v", apperrors.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: gateway returned non-OK status: %s", apperrors.ErrGateway, resp.Status)
	}

	var apiResp CreatePageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", apperrors.ErrGateway, err)
	}

	if !apiResp.Success || apiResp.PayURL == "" {
		return nil, fmt.Errorf("%w: gateway rejected payment page: %s", apperrors.ErrGateway, apiResp.Message)
	}

	return &apiResp, nil
}

// CheckStatus asks the gateway directly for the transaction outcome. The
// redirect and poll paths rely on this instead of trusting query strings.
func (c *Client) CheckStatus(ctx context.Context, merchantRef string) (*StatusResponse, error) {
	httpReq, err := c.newRequest(ctx, http.MethodGet, "/pg/v1/status/"+c.merchantID+"/"+merchantRef, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: status check: %v", apperrors.ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gateway returned non-OK status: %s", apperrors.ErrGateway, resp.Status)
	}

	var apiResp StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", apperrors.ErrGateway, err)
	}

	switch apiResp.TxnStatus {
	case TxnSuccess, TxnFailed, TxnPending:
	default:
		return nil, fmt.Errorf("%w: unknown txn status %q", apperrors.ErrGateway, apiResp.TxnStatus)
	}

	return &apiResp, nil
}

// ValidateWebhookPayload checks the X-VERIFY checksum on a raw webhook body
// and decodes it into a typed payload.
func ValidateWebhookPayload(raw []byte, xVerify string) (*WebhookPayload, error) {
	ok, err := utils.VerifyChecksum(string(raw), xVerify)
	if err != nil {
		return nil, fmt.Errorf("verify checksum: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: webhook checksum mismatch", apperrors.ErrInvalidArgument)
	}

	var payload WebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook body", apperrors.ErrInvalidArgument)
	}

	if payload.MerchantRef == "" {
		return nil, fmt.Errorf("%w: webhook missing merchant_ref", apperrors.ErrInvalidArgument)
	}
	switch payload.TxnStatus {
	case TxnSuccess, TxnFailed, TxnPending:
	default:
		return nil, fmt.Errorf("%w: webhook has unknown txn status %q", apperrors.ErrInvalidArgument, payload.TxnStatus)
	}

	return &payload, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader *bytes.Buffer
	if body == nil {
		reader = bytes.NewBuffer(nil)
	} else {
		reader = bytes.NewBuffer(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	checksum, err := utils.ComputeChecksum(string(body) + path)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("X-VERIFY", checksum)
	httpReq.Header.Set("X-MERCHANT-ID", c.merchantID)

	return httpReq, nil
}
