package paymentgateway

import (
	"time"
)

// Transaction status codes the gateway reports.
const (
	TxnSuccess = "SUCCESS"
	TxnFailed  = "FAILED"
	TxnPending = "PENDING"
)

// CreatePageRequest asks the gateway for a hosted payment page.
type CreatePageRequest struct {
	MerchantRef string `json:"merchant_ref"`
	Amount      int64  `json:"amount"`
	PayerPhone  string `json:"payer_phone"`
	SuccessURL  string `json:"success_url"`
	FailedURL   string `json:"failed_url"`
}

// CreatePageResponse carries the hosted page back.
type CreatePageResponse struct {
	Success   bool      `json:"success"`
	PayURL    string    `json:"pay_url"`
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

// StatusResponse is the gateway's answer to a direct status check.
type StatusResponse struct {
	Success       bool   `json:"success"`
	MerchantRef   string `json:"merchant_ref"`
	TxnStatus     string `json:"txn_status"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// WebhookPayload is the gateway-pushed transaction outcome.
type WebhookPayload struct {
	MerchantRef   string `json:"merchant_ref"`
	TxnStatus     string `json:"txn_status"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id"`
}
