package other

import "encoding/json"

type PaystackEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type PaystackInitializeRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Reference   string         `json:"reference"`
	Currency    string         `json:"currency"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type PaystackInitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type PaystackTransaction struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaidAt    string `json:"paid_at"`
	Metadata  struct {
		OrderID string `json:"order_id"`
	} `json:"metadata"`
}

type PaystackRefundRequest struct {
	Transaction string `json:"transaction"`
}

type PaystackWebhookEvent struct {
	Event string              `json:"event"`
	Data  PaystackTransaction `json:"data"`
}
