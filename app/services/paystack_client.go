package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/tkbglow/glow-api/app/models"
	"github.com/tkbglow/glow-api/app/models/other"
	"github.com/tkbglow/glow-api/app/utils/calc"
)

type PaystackClient struct {
	apiClient
	callbackURL string
}

func NewPaystackClient(secretKey, baseURL, callbackURL string) *PaystackClient {
	return &PaystackClient{
		apiClient:   newAPIClient("Paystack", secretKey, baseURL),
		callbackURL: callbackURL,
	}
}

func (c *PaystackClient) Name() string { return models.ProviderPaystack }

func (c *PaystackClient) call(ctx context.Context, method, path string, payload any, out any) error {
	body, err := c.doRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	var env other.PaystackEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: Paystack returned invalid JSON: %v", ErrPaymentProvider, err)
	}
	if !env.Status {
		return fmt.Errorf("%w: Paystack: %s", ErrPaymentProvider, env.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: Paystack data: %v", ErrPaymentProvider, err)
	}
	return nil
}

func (c *PaystackClient) Initialize(ctx context.Context, order *models.Order, reference string) (*PaymentSession, error) {
	req := other.PaystackInitializeRequest{
		Email:       order.Email,
		Amount:      calc.Kobo(order.Total),
		Reference:   reference,
		Currency:    currencyNGN,
		CallbackURL: returnURL(c.callbackURL, order.ID),
		Metadata:    map[string]any{"order_id": order.ID},
	}

	var data other.PaystackInitializeData
	if err := c.call(ctx, http.MethodPost, "/transaction/initialize", req, &data); err != nil {
		return nil, err
	}
	return &PaymentSession{
		Provider:         models.ProviderPaystack,
		Reference:        data.Reference,
		AccessCode:       data.AccessCode,
		AuthorizationURL: data.AuthorizationURL,
	}, nil
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (*VerifiedPayment, error) {
	var tx other.PaystackTransaction
	if err := c.call(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &tx); err != nil {
		return nil, err
	}
	return &VerifiedPayment{
		Provider:      models.ProviderPaystack,
		Reference:     tx.Reference,
		TransactionID: strconv.FormatInt(tx.ID, 10),
		OrderID:       tx.Metadata.OrderID,
		Status:        tx.Status,
		Amount:        decimal.New(tx.Amount, -2),
		Currency:      tx.Currency,
		Successful:    tx.Status == "success",
	}, nil
}

func (c *PaystackClient) Refund(ctx context.Context, order *models.Order) error {
	return c.call(ctx, http.MethodPost, "/refund", other.PaystackRefundRequest{Transaction: order.ProviderReference}, nil)
}

func (c *PaystackClient) Ping(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/balance", nil, nil)
}

// VerifyPaystackSignature checks the x-paystack-signature header, an
// HMAC-SHA512 of the raw body keyed with the secret key.
func VerifyPaystackSignature(secretKey string, body []byte, signature string) bool {
	if secretKey == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
