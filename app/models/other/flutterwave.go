package other

import "encoding/json"

type FlutterwaveEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type FlutterwaveCustomer struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phonenumber,omitempty"`
}

type FlutterwaveCustomizations struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
}

type FlutterwavePaymentRequest struct {
	TxRef          string                    `json:"tx_ref"`
	Amount         string                    `json:"amount"`
	Currency       string                    `json:"currency"`
	RedirectURL    string                    `json:"redirect_url"`
	Customer       FlutterwaveCustomer       `json:"customer"`
	Customizations FlutterwaveCustomizations `json:"customizations"`
	Meta           map[string]string         `json:"meta,omitempty"`
}

type FlutterwavePaymentData struct {
	Link string `json:"link"`
}

type FlutterwaveTransaction struct {
	ID       int64   `json:"id"`
	TxRef    string  `json:"tx_ref"`
	FlwRef   string  `json:"flw_ref"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Status   string  `json:"status"`
	Meta     struct {
		OrderID string `json:"order_id"`
	} `json:"meta"`
}

type FlutterwaveWebhookEvent struct {
	Event string                 `json:"event"`
	Data  FlutterwaveTransaction `json:"data"`
}
